package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGradeString(t *testing.T) {
	assert.Equal(t, "N/A", NotPresent.String())
	assert.Equal(t, "5.0", GradeOf(decimal.NewFromInt(5)).String())
	assert.Equal(t, "3.5", GradeOf(decimal.RequireFromString("3.50")).String())
	assert.Equal(t, "3.0", GradeOf(decimal.RequireFromString("3.00")).String())
	assert.Equal(t, "0.011", GradeOf(decimal.RequireFromString("0.011")).String())
}

func TestWarningString(t *testing.T) {
	tests := []struct {
		name string
		w    Warning
		want string
	}{
		{
			name: "full",
			w:    Warning{Kind: WarnInvalidNumber, Path: "grades.csv", Row: 12, Student: "alice@x.edu", Assignment: "Project 1", Message: `value "abc" is not a number`},
			want: `grades.csv:12: invalid-number: alice@x.edu / Project 1: value "abc" is not a number`,
		},
		{
			name: "column only",
			w:    Warning{Kind: WarnMissingColumn, Path: "old.csv", Assignment: "Project 2", Message: "column not found"},
			want: "old.csv: missing-column: Project 2: column not found",
		},
		{
			name: "bare",
			w:    Warning{Kind: WarnBlankIdentity, Message: "row skipped"},
			want: "blank-identity: row skipped",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.w.String())
		})
	}
}

func TestDiffResultCountByKind(t *testing.T) {
	r := &DiffResult{Deltas: []GradeDelta{{Kind: DeltaUpdated}, {Kind: DeltaUpdated}, {Kind: DeltaNewGrade}}}
	counts := r.CountByKind()
	assert.Equal(t, 2, counts[DeltaUpdated])
	assert.Equal(t, 1, counts[DeltaNewGrade])
	assert.Equal(t, 0, counts[DeltaMissingInNew])
}
