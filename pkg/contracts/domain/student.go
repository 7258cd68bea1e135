package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FieldState is the tri-state result of reading an assignment column.
type FieldState int

const (
	// FieldAbsent means the column does not exist in the record's file.
	FieldAbsent FieldState = iota
	// FieldNumeric means the value parsed as a number; blank counts as 0.
	FieldNumeric
	// FieldInvalid means the column exists but holds a non-numeric value.
	FieldInvalid
)

func (s FieldState) String() string {
	switch s {
	case FieldNumeric:
		return "numeric"
	case FieldInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// FieldValue is one assignment cell as read from a StudentRecord.
type FieldValue struct {
	State  FieldState
	Raw    string
	Number decimal.Decimal
}

// maxGradeExponent bounds the decimal exponent of a grade cell. Values such as
// "1e900000000" parse cheaply but cannot be compared in reasonable time.
const maxGradeExponent = 20

// ParseFieldValue classifies a raw cell. Surrounding whitespace is ignored.
// Numbers with an exponent outside ±maxGradeExponent are invalid.
func ParseFieldValue(raw string) FieldValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FieldValue{State: FieldNumeric, Raw: raw, Number: decimal.Zero}
	}
	n, err := decimal.NewFromString(trimmed)
	if err != nil || n.Exponent() > maxGradeExponent || n.Exponent() < -maxGradeExponent {
		return FieldValue{State: FieldInvalid, Raw: raw}
	}
	return FieldValue{State: FieldNumeric, Raw: raw, Number: n}
}

// Present reports whether the column exists for the record.
func (v FieldValue) Present() bool {
	return v.State != FieldAbsent
}

// Submitted applies the zero-as-absent rule: a value counts as submitted when
// it is non-blank and not the literal "0". Platform challenge columns report
// attempt counts, so "0" means no attempt.
func (v FieldValue) Submitted() bool {
	if v.State == FieldAbsent {
		return false
	}
	s := strings.TrimSpace(v.Raw)
	return s != "" && s != "0"
}

// StudentRecord is one accepted row of a snapshot. It is immutable once built.
type StudentRecord struct {
	Key      string
	Identity string
	Name     string
	Email    string
	Status   string
	Row      int

	columns []string
	values  map[string]string
}

// NewStudentRecord builds a record over the file's header. Missing trailing
// cells are stored as empty strings.
func NewStudentRecord(key, identity string, row int, columns, cells []string) *StudentRecord {
	values := make(map[string]string, len(columns))
	for i, col := range columns {
		if _, dup := values[col]; dup {
			continue
		}
		if i < len(cells) {
			values[col] = cells[i]
		} else {
			values[col] = ""
		}
	}
	return &StudentRecord{
		Key:      key,
		Identity: identity,
		Row:      row,
		columns:  columns,
		values:   values,
	}
}

// Columns returns the header of the file the record came from.
func (r *StudentRecord) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Value returns the raw cell for a column and whether the column exists.
func (r *StudentRecord) Value(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Values returns the raw cells in header order.
func (r *StudentRecord) Values() []string {
	out := make([]string, len(r.columns))
	for i, col := range r.columns {
		out[i] = r.values[col]
	}
	return out
}

// Field reads an assignment column as a typed value.
func (r *StudentRecord) Field(column string) FieldValue {
	raw, ok := r.values[column]
	if !ok {
		return FieldValue{State: FieldAbsent}
	}
	return ParseFieldValue(raw)
}

// DisplayName prefers the human name and falls back to the identity.
func (r *StudentRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Identity
}
