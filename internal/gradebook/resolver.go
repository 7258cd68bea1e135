package gradebook

import (
	"fmt"
	"slices"
	"strings"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

// fallbackEmailColumns are tried after the side's configured email column.
var fallbackEmailColumns = []string{"Email", "SIS Login ID"}

// Resolution is the outcome of checking a header against the mapping.
// Column names are exact header cells after trimming.
type Resolution struct {
	Identity string
	Name     string
	// Emails are the columns that may hold an address, most specific first.
	Emails  []string
	Status  []string
	Present []string
	Missing []string
}

// ResolveColumns checks that the identity column of side (or override, when
// set) is in columns and splits assignments into present and missing ones.
// A missing identity column is fatal; a missing assignment is not.
func ResolveColumns(m *domain.ColumnMapping, side domain.Side, override string, columns, assignments []string) (*Resolution, error) {
	index := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		index[strings.TrimSpace(c)] = struct{}{}
	}
	has := func(c string) bool {
		c = strings.TrimSpace(c)
		if c == "" {
			return false
		}
		_, ok := index[c]
		return ok
	}

	identity := strings.TrimSpace(override)
	if identity == "" {
		identity = strings.TrimSpace(m.IdentityColumn(side))
	}
	if !has(identity) {
		return nil, &apperrors.IdentityColumnMissingError{Side: string(side), Column: identity}
	}

	res := &Resolution{Identity: identity}
	if name := m.NameColumn(side); has(name) {
		res.Name = strings.TrimSpace(name)
	}
	for _, c := range append([]string{strings.TrimSpace(m.EmailColumn(side))}, fallbackEmailColumns...) {
		if has(c) && !slices.Contains(res.Emails, c) {
			res.Emails = append(res.Emails, c)
		}
	}
	for _, s := range m.StatusColumns {
		if has(s) {
			res.Status = append(res.Status, strings.TrimSpace(s))
		}
	}
	res.Present, res.Missing = SplitAssignments(has, assignments)
	return res, nil
}

// SplitAssignments partitions assignment columns by the has predicate,
// keeping their order.
func SplitAssignments(has func(string) bool, assignments []string) (present, missing []string) {
	for _, a := range assignments {
		if has(a) {
			present = append(present, a)
		} else {
			missing = append(missing, a)
		}
	}
	return present, missing
}

// MissingWarnings reports one missing-column warning per missing assignment.
func (r *Resolution) MissingWarnings(path string) []domain.Warning {
	warnings := make([]domain.Warning, 0, len(r.Missing))
	for _, col := range r.Missing {
		warnings = append(warnings, missingColumnWarning(path, col))
	}
	return warnings
}

func missingColumnWarning(path, column string) domain.Warning {
	return domain.Warning{
		Kind:       domain.WarnMissingColumn,
		Path:       path,
		Assignment: column,
		Message:    fmt.Sprintf("column %q not found", column),
	}
}
