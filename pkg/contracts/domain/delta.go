package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Grade is a numeric value that may be absent.
type Grade struct {
	Present bool            `json:"present"`
	Value   decimal.Decimal `json:"value"`
}

// NotPresent marks a column that does not exist in a snapshot.
var NotPresent = Grade{}

// GradeOf wraps a parsed value.
func GradeOf(v decimal.Decimal) Grade {
	return Grade{Present: true, Value: v}
}

// String prints the value with at least one decimal place, or "N/A".
func (g Grade) String() string {
	if !g.Present {
		return "N/A"
	}
	s := g.Value.String()
	if !strings.Contains(s, ".") {
		return g.Value.StringFixed(1)
	}
	return s
}

// DeltaKind classifies a detected change.
type DeltaKind string

const (
	DeltaUpdated      DeltaKind = "updated"
	DeltaNewGrade     DeltaKind = "new-grade"
	DeltaMissingInNew DeltaKind = "missing-in-new"
)

// GradeDelta is one changed grade for one matched student.
type GradeDelta struct {
	Student    string    `json:"student"`
	Name       string    `json:"name"`
	Assignment string    `json:"assignment"`
	Old        Grade     `json:"old"`
	New        Grade     `json:"new"`
	Kind       DeltaKind `json:"kind"`
}

// DiffResult holds the deltas in (student, assignment) order plus the
// recoverable problems met along the way.
type DiffResult struct {
	Deltas         []GradeDelta `json:"deltas"`
	Warnings       []Warning    `json:"warnings"`
	MissingColumns []string     `json:"missing_columns"`
}

// CountByKind tallies deltas per kind.
func (r *DiffResult) CountByKind() map[DeltaKind]int {
	counts := make(map[DeltaKind]int, 3)
	for _, d := range r.Deltas {
		counts[d.Kind]++
	}
	return counts
}
