package domain

import (
	"time"
)

// ReportType names the command that produced a run report
type ReportType string

const (
	ReportTypeUpdate      ReportType = "update"
	ReportTypeCompare     ReportType = "compare"
	ReportTypeSummary     ReportType = "summary"
	ReportTypeUnsubmitted ReportType = "unsubmitted"
	ReportTypeRoster      ReportType = "roster"
	ReportTypeCompleters  ReportType = "completers"
	ReportTypePipeline    ReportType = "pipeline"
)

// ReportFormat defines the format of a written report file
type ReportFormat string

const (
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatText  ReportFormat = "text"
	ReportFormatExcel ReportFormat = "excel"
)

// RunReport is the metadata of one run, written to the workbook's Run sheet
// and to the log.
type RunReport struct {
	ID         string         `json:"id" validate:"required,uuid"`
	Type       ReportType     `json:"type" validate:"required"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Inputs     []ReportInput  `json:"inputs"`
	Outputs    []ReportOutput `json:"outputs"`
	Warnings   []Warning      `json:"warnings,omitempty"`
}

// ReportInput describes one parsed export.
type ReportInput struct {
	Label       string `json:"label"`
	Path        string `json:"path"`
	Side        Side   `json:"side"`
	Records     int    `json:"records"`
	Fingerprint uint64 `json:"fingerprint"`
}

// ReportOutput describes one written file.
type ReportOutput struct {
	Path   string       `json:"path"`
	Format ReportFormat `json:"format"`
	Rows   int          `json:"rows"`
}

// AddInput records a parsed snapshot as an input of the run.
func (r *RunReport) AddInput(s *Snapshot) {
	r.Inputs = append(r.Inputs, ReportInput{
		Label:       s.Name,
		Path:        s.Path,
		Side:        s.Side,
		Records:     s.Len(),
		Fingerprint: s.Fingerprint,
	})
}

// AddOutput records a written file.
func (r *RunReport) AddOutput(path string, format ReportFormat, rows int) {
	r.Outputs = append(r.Outputs, ReportOutput{Path: path, Format: format, Rows: rows})
}

// Duration is the wall time of the run, zero until it has finished.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
