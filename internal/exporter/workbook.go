package exporter

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"gradesync/pkg/contracts/domain"
)

const (
	maxSheetName = 31
	maxColWidth  = 60.0
	minColWidth  = 8.0
)

// Workbook collects report tables into one .xlsx file, one sheet per section.
type Workbook struct {
	file   *excelize.File
	bold   int
	sheets []string
}

// NewWorkbook creates an empty workbook. Call Close when done.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &Workbook{file: f, bold: bold}, nil
}

// Sheets returns the sheet names in creation order.
func (wb *Workbook) Sheets() []string {
	return slices.Clone(wb.sheets)
}

// AddSheet adds a sheet holding the table, with a bold frozen header row.
func (wb *Workbook) AddSheet(name string, t Table) error {
	sheet, err := wb.newSheet(name)
	if err != nil {
		return err
	}
	if _, err := wb.writeTable(sheet, 1, t); err != nil {
		return err
	}
	if len(t.Headers) > 0 {
		if err := wb.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header of %s: %w", sheet, err)
		}
	}
	return wb.fitColumns(sheet, t)
}

// AddRunSheet adds the "Run" sheet: run metadata, then the inputs, outputs
// and warnings of the run as separate blocks.
func (wb *Workbook) AddRunSheet(r *domain.RunReport) error {
	sheet, err := wb.newSheet("Run")
	if err != nil {
		return err
	}

	meta := Table{Records: [][]string{
		{"Run ID", r.ID},
		{"Type", string(r.Type)},
		{"Started", formatTime(r.StartedAt)},
		{"Finished", formatTime(r.FinishedAt)},
		{"Duration", r.Duration().String()},
		{"Warnings", formatInt(len(r.Warnings))},
	}}

	inputs := Table{Headers: []string{"Input", "Path", "Side", "Records", "Fingerprint"}}
	for _, in := range r.Inputs {
		inputs.Records = append(inputs.Records, []string{
			in.Label, in.Path, string(in.Side), formatInt(in.Records), formatFingerprint(in.Fingerprint),
		})
	}

	outputs := Table{Headers: []string{"Output", "Format", "Rows"}}
	for _, out := range r.Outputs {
		outputs.Records = append(outputs.Records, []string{out.Path, string(out.Format), formatInt(out.Rows)})
	}

	row := 1
	for _, block := range []Table{meta, inputs, outputs, WarningsTable(r.Warnings)} {
		next, err := wb.writeTable(sheet, row, block)
		if err != nil {
			return err
		}
		row = next + 1
	}
	if err := wb.file.SetColWidth(sheet, "A", "A", 16); err != nil {
		return fmt.Errorf("failed to size %s: %w", sheet, err)
	}
	return wb.file.SetColWidth(sheet, "B", "F", 40)
}

// Write serializes the workbook. The first sheet is the active one.
func (wb *Workbook) Write(w io.Writer) error {
	if len(wb.sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	wb.file.SetActiveSheet(0)
	return wb.file.Write(w)
}

// Close releases the workbook's temporary resources.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

func (wb *Workbook) newSheet(name string) (string, error) {
	sheet := SheetName(name)
	if slices.Contains(wb.sheets, sheet) {
		return "", fmt.Errorf("sheet %q already exists", sheet)
	}
	if len(wb.sheets) == 0 {
		// reuse the default sheet of a new file
		if err := wb.file.SetSheetName(wb.file.GetSheetName(0), sheet); err != nil {
			return "", fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := wb.file.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	wb.sheets = append(wb.sheets, sheet)
	return sheet, nil
}

// writeTable writes t starting at row and returns the row after the last one.
func (wb *Workbook) writeTable(sheet string, row int, t Table) (int, error) {
	if len(t.Headers) > 0 {
		if err := wb.writeRow(sheet, row, t.Headers); err != nil {
			return 0, err
		}
		if err := wb.file.SetRowStyle(sheet, row, row, wb.bold); err != nil {
			return 0, fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
		row++
	}
	for _, rec := range t.Records {
		if err := wb.writeRow(sheet, row, rec); err != nil {
			return 0, err
		}
		row++
	}
	return row, nil
}

func (wb *Workbook) writeRow(sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = cellValue(c)
	}
	if err := wb.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// fitColumns sizes each column to its longest cell within bounds.
func (wb *Workbook) fitColumns(sheet string, t Table) error {
	widths := make([]float64, len(t.Headers))
	measure := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], float64(utf8.RuneCountInString(c))+2)
		}
	}
	measure(t.Headers)
	for _, rec := range t.Records {
		measure(rec)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.file.SetColWidth(sheet, col, col, min(max(w, minColWidth), maxColWidth)); err != nil {
			return fmt.Errorf("failed to size %s!%s: %w", sheet, col, err)
		}
	}
	return nil
}

// cellValue stores canonical integers as numbers so Excel can sum them.
// Anything else, including IDs with leading zeros, stays text.
func cellValue(s string) interface{} {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return s
	}
	return n
}

// SheetName makes name usable as a sheet name: characters Excel rejects
// become "-" and the result is cut to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Sheet"
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}
