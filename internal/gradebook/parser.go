package gradebook

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

// Parser turns export text into snapshots under one column mapping.
type Parser struct {
	mapping *domain.ColumnMapping
	logger  *slog.Logger
}

// NewParser creates a parser; a nil logger uses slog.Default().
func NewParser(mapping *domain.ColumnMapping, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{mapping: mapping, logger: logger}
}

// IdentityKey normalizes an identity for joining: the text is NFKC
// normalized, surrounding and repeated whitespace is collapsed and case is
// folded.
func IdentityKey(identity string) string {
	return cases.Fold().String(strings.Join(strings.Fields(norm.NFKC.String(identity)), " "))
}

// Parse builds a snapshot from src. It fails with *errors.HeaderNotFoundError
// or *errors.IdentityColumnMissingError; skipped rows are only logged.
func (p *Parser) Parse(ctx context.Context, src domain.Source) (*domain.Snapshot, error) {
	snap, _, err := p.ParseWithWarnings(ctx, src)
	return snap, err
}

// ParseWithWarnings is Parse returning the recoverable problems as well.
func (p *Parser) ParseWithWarnings(ctx context.Context, src domain.Source) (*domain.Snapshot, []domain.Warning, error) {
	anchors := src.Anchors
	if len(anchors) == 0 {
		anchors = p.mapping.AnchorsFor(src.Side)
	}

	offset, lines, err := normalizeHeader(SplitLines(src.Content), anchors)
	if err != nil {
		var hnf *apperrors.HeaderNotFoundError
		if apperrors.As(err, &hnf) {
			hnf.Path = src.Path
		}
		return nil, nil, err
	}
	text := strings.Join(lines, "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read header row", err).WithContext("path", src.Path)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	columns[0] = strings.TrimPrefix(columns[0], "\ufeff")

	res, err := ResolveColumns(p.mapping, src.Side, src.IdentityColumn, columns, nil)
	if err != nil {
		var icm *apperrors.IdentityColumnMissingError
		if apperrors.As(err, &icm) {
			icm.Path = src.Path
		}
		return nil, nil, err
	}
	pos := columnPositions(columns)

	var (
		records  []*domain.StudentRecord
		warnings []domain.Warning
		seen     = make(map[string]bool)
		dropped  = make(map[string]bool)
	)
	warn := func(kind domain.WarningKind, row int, student, msg string) {
		warnings = append(warnings, domain.Warning{
			Kind:    kind,
			Path:    src.Path,
			Row:     row,
			Student: student,
			Message: msg,
		})
	}

	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError("malformed row", err).WithContext("path", src.Path)
		}
		line, _ := reader.FieldPos(0)
		row := offset + line

		if blankRow(cells) {
			continue
		}
		if len(cells) != len(columns) {
			warn(domain.WarnRaggedRow, row, "",
				fmt.Sprintf("row has %d fields, header has %d", len(cells), len(columns)))
		}

		cell := func(col string) string {
			i, ok := pos[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		identity := cell(res.Identity)
		name := cell(res.Name)
		if p.mapping.IsIgnoredIdentity(identity) || p.mapping.IsIgnoredIdentity(name) {
			warn(domain.WarnIgnoredIdentity, row, firstNonEmpty(identity, name), "not a student row")
			continue
		}
		if identity == "" {
			warn(domain.WarnBlankIdentity, row, name,
				fmt.Sprintf("identity column %q is blank", res.Identity))
			continue
		}

		key := IdentityKey(identity)
		status, excluded := p.status(res.Status, cell)
		if excluded {
			msg := fmt.Sprintf("status %q excluded", status)
			if seen[key] && !dropped[key] {
				msg += ", earlier row of the same student dropped too"
			}
			dropped[key], seen[key] = true, true
			warn(domain.WarnExcludedStatus, row, identity, msg)
			continue
		}
		if seen[key] {
			msg := "duplicate identity, first occurrence kept"
			if dropped[key] {
				msg = "student excluded by an earlier row"
			}
			warn(domain.WarnDuplicateIdentity, row, identity, msg)
			continue
		}
		seen[key] = true

		rec := domain.NewStudentRecord(key, identity, row, columns, cells)
		rec.Name = name
		rec.Email = emailOf(identity, res.Emails, cell)
		rec.Status = status
		records = append(records, rec)
	}

	kept := records[:0]
	for _, r := range records {
		if !dropped[r.Key] {
			kept = append(kept, r)
		}
	}
	snap := domain.NewSnapshot(src, columns, kept, xxhash.Sum64String(text))

	for _, w := range warnings {
		p.logger.WarnContext(ctx, "Row skipped or adjusted",
			slog.String("kind", string(w.Kind)),
			slog.String("warning", w.String()))
	}
	p.logger.InfoContext(ctx, "Snapshot parsed",
		slog.String("path", src.Path),
		slog.String("side", string(src.Side)),
		slog.Int("header_line", offset+1),
		slog.Int("columns", len(columns)),
		slog.Int("records", snap.Len()),
		slog.Int("warnings", len(warnings)))

	return snap, warnings, nil
}

// status returns the first non-blank status value, or the first excluded one.
func (p *Parser) status(columns []string, cell func(string) string) (string, bool) {
	status := ""
	for _, col := range columns {
		v := cell(col)
		if v == "" {
			continue
		}
		if p.mapping.IsExcludedStatus(v) {
			return v, true
		}
		if status == "" {
			status = v
		}
	}
	return status, false
}

// columnPositions maps each column to its first index.
func columnPositions(columns []string) map[string]int {
	pos := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := pos[c]; !dup {
			pos[c] = i
		}
	}
	return pos
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// emailOf prefers the identity itself, then the first email column holding
// an address.
func emailOf(identity string, columns []string, cell func(string) string) string {
	if strings.Contains(identity, "@") {
		return strings.ToLower(identity)
	}
	for _, col := range columns {
		if v := cell(col); strings.Contains(v, "@") {
			return strings.ToLower(v)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
