package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileSink is where reports are written. *files.Manager implements it.
type FileSink interface {
	WriteFile(path string, fn func(w io.Writer) error) error
	AppendFile(path string, fn func(w io.Writer) error) error
}

// Table is a rendered report: one header row and the data rows.
type Table struct {
	Headers []string
	Records [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Records)
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM. Leave it off for files that are imported
	// back into the LMS.
	BOMPrefix bool
}

// WriteCSV renders a table as CSV to w.
func WriteCSV(w io.Writer, t Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range t.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVWriter writes report tables through a FileSink
type CSVWriter struct {
	sink   FileSink
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(sink FileSink, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{sink: sink, logger: logger}
}

// WriteCSV replaces the file at path with the table.
func (w *CSVWriter) WriteCSV(path string, t Table, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", t.Len()))

	return w.sink.WriteFile(path, func(out io.Writer) error {
		return WriteCSV(out, t, options)
	})
}

// WriteSimpleCSV writes a human-facing report with a BOM for Excel.
func (w *CSVWriter) WriteSimpleCSV(path string, headers []string, records [][]string) error {
	return w.WriteCSV(path, Table{Headers: headers, Records: records}, WriteOptions{BOMPrefix: true})
}
