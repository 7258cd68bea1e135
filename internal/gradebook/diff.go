package gradebook

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gradesync/pkg/contracts/domain"
)

// gradeEpsilon absorbs rounding noise from exports; only a larger change is
// reported.
var gradeEpsilon = decimal.New(1, -2)

// Epsilon returns the fixed tolerance below which grade changes are ignored.
func Epsilon() decimal.Decimal {
	return gradeEpsilon
}

// Diff compares the assignments of every matched pair, in pair order and
// then assignment order. Bad values and missing columns become warnings.
func Diff(pairs []domain.MatchedPair, assignments []string) *domain.DiffResult {
	res := &domain.DiffResult{}
	missing := make(map[string]bool)

	for _, pair := range pairs {
		student := pair.New.Identity
		name := pair.New.DisplayName()

		for _, col := range assignments {
			oldVal := pair.Old.Field(col)
			newVal := pair.New.Field(col)

			delta := domain.GradeDelta{Student: student, Name: name, Assignment: col}

			switch {
			case !newVal.Present():
				if !missing[col] {
					missing[col] = true
					res.MissingColumns = append(res.MissingColumns, col)
					w := missingColumnWarning("", col)
					w.Message = fmt.Sprintf("column %q not found in new file", col)
					res.Warnings = append(res.Warnings, w)
				}

				if oldVal.State == domain.FieldNumeric {
					delta.Old = domain.GradeOf(oldVal.Number)
					delta.New = domain.NotPresent
					delta.Kind = domain.DeltaMissingInNew
					res.Deltas = append(res.Deltas, delta)
				}

			case !oldVal.Present():
				if newVal.State == domain.FieldInvalid {
					res.Warnings = append(res.Warnings, invalidNumberWarning(pair.New, col, newVal.Raw))
					continue
				}
				delta.Old = domain.NotPresent
				delta.New = domain.GradeOf(newVal.Number)
				delta.Kind = domain.DeltaNewGrade
				res.Deltas = append(res.Deltas, delta)

			case oldVal.State == domain.FieldInvalid || newVal.State == domain.FieldInvalid:
				if oldVal.State == domain.FieldInvalid {
					res.Warnings = append(res.Warnings, invalidNumberWarning(pair.Old, col, oldVal.Raw))
				}
				if newVal.State == domain.FieldInvalid {
					res.Warnings = append(res.Warnings, invalidNumberWarning(pair.New, col, newVal.Raw))
				}

			default:
				if newVal.Number.Sub(oldVal.Number).Abs().GreaterThan(gradeEpsilon) {
					delta.Old = domain.GradeOf(oldVal.Number)
					delta.New = domain.GradeOf(newVal.Number)
					delta.Kind = domain.DeltaUpdated
					res.Deltas = append(res.Deltas, delta)
				}
			}
		}
	}
	return res
}

func invalidNumberWarning(r *domain.StudentRecord, col, raw string) domain.Warning {
	return domain.Warning{
		Kind:       domain.WarnInvalidNumber,
		Row:        r.Row,
		Student:    r.Identity,
		Assignment: col,
		Message:    fmt.Sprintf("value %q is not a number", raw),
	}
}
