package files

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

// Encoding names reported by Decode
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
	EncodingXLSX        = "xlsx"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Reader loads exports from disk as UTF-8 text. Each file is opened, fully
// read and closed before decoding.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader; a nil logger uses slog.Default().
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read returns the decoded text of a CSV export or the first non-empty
// sheet of an .xlsx workbook rendered as CSV.
func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError(path).WithContext("path", path)
		}
		return "", apperrors.NewStorageError("failed to read export", err).WithContext("path", path)
	}

	var (
		text     []byte
		encoding string
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		text, err = WorkbookToCSV(data)
		encoding = EncodingXLSX
	} else {
		text, encoding, err = Decode(data)
	}
	if err != nil {
		return "", apperrors.NewParsingError("failed to decode export", err).WithContext("path", path)
	}

	r.logger.DebugContext(ctx, "Export read",
		slog.String("path", path),
		slog.String("encoding", encoding),
		slog.Int("bytes", len(data)))

	return string(text), nil
}

// ReadSource reads path into a Source for the given side. TakenAt is the
// file's modification time.
func (r *Reader) ReadSource(ctx context.Context, path string, side domain.Side) (domain.Source, error) {
	content, err := r.Read(ctx, path)
	if err != nil {
		return domain.Source{}, err
	}
	src := domain.Source{
		Path:    path,
		Name:    filepath.Base(path),
		Side:    side,
		Content: content,
	}
	if info, err := os.Stat(path); err == nil {
		src.TakenAt = info.ModTime()
	}
	return src, nil
}

// Decode strips a byte order mark and converts UTF-16 or Windows-1252 input to
// UTF-8. Input without a BOM that is not valid UTF-8 is taken as Windows-1252,
// the code page Excel uses for CSV on Windows.
func Decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		name := EncodingUTF16LE
		if bytes.HasPrefix(data, bomUTF16BE) {
			name = EncodingUTF16BE
		}
		// BOMOverride picks the byte order from the mark and consumes it.
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, "", fmt.Errorf("%s decode failed: %w", name, err)
		}
		return out, name, nil
	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	default:
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("windows-1252 decode failed: %w", err)
		}
		return out, EncodingWindows1252, nil
	}
}

// WorkbookToCSV renders the first sheet that has any rows as CSV text.
func WorkbookToCSV(data []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			return nil, fmt.Errorf("failed to render sheet %s: %w", sheet, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("workbook has no rows")
}
