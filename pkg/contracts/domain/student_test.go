package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantState FieldState
		wantNum   string
		submitted bool
	}{
		{name: "integer", raw: "3", wantState: FieldNumeric, wantNum: "3", submitted: true},
		{name: "decimal", raw: "3.0", wantState: FieldNumeric, wantNum: "3", submitted: true},
		{name: "padded", raw: "  7.5 ", wantState: FieldNumeric, wantNum: "7.5", submitted: true},
		{name: "blank counts as zero", raw: "", wantState: FieldNumeric, wantNum: "0", submitted: false},
		{name: "whitespace only", raw: "   ", wantState: FieldNumeric, wantNum: "0", submitted: false},
		{name: "literal zero", raw: "0", wantState: FieldNumeric, wantNum: "0", submitted: false},
		{name: "zero with decimals is submitted", raw: "0.0", wantState: FieldNumeric, wantNum: "0", submitted: true},
		{name: "excused marker", raw: "EX", wantState: FieldInvalid, submitted: true},
		{name: "percentage", raw: "85%", wantState: FieldInvalid, submitted: true},
		{name: "scientific notation", raw: "1.5e1", wantState: FieldNumeric, wantNum: "15", submitted: true},
		{name: "huge exponent", raw: "1e900000000", wantState: FieldInvalid, submitted: true},
		{name: "tiny exponent", raw: "1e-900000000", wantState: FieldInvalid, submitted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseFieldValue(tt.raw)
			assert.Equal(t, tt.wantState, v.State)
			assert.Equal(t, tt.raw, v.Raw)
			assert.True(t, v.Present())
			assert.Equal(t, tt.submitted, v.Submitted())
			if tt.wantState == FieldNumeric {
				assert.True(t, v.Number.Equal(decimal.RequireFromString(tt.wantNum)), "got %s", v.Number)
			}
		})
	}
}

func TestStudentRecordField(t *testing.T) {
	columns := []string{"Student", "Project 1", "Project 2", "Notes"}
	rec := NewStudentRecord("alice@x.edu", "Alice@x.edu", 4, columns, []string{"Alice@x.edu", "3", "abc"})

	t.Run("numeric", func(t *testing.T) {
		f := rec.Field("Project 1")
		require.Equal(t, FieldNumeric, f.State)
		assert.Equal(t, "3", f.Number.String())
	})

	t.Run("invalid", func(t *testing.T) {
		assert.Equal(t, FieldInvalid, rec.Field("Project 2").State)
	})

	t.Run("short row pads with blanks", func(t *testing.T) {
		v, ok := rec.Value("Notes")
		assert.True(t, ok)
		assert.Empty(t, v)
		assert.Equal(t, FieldNumeric, rec.Field("Notes").State)
	})

	t.Run("absent", func(t *testing.T) {
		f := rec.Field("Project 9")
		assert.Equal(t, FieldAbsent, f.State)
		assert.False(t, f.Present())
		assert.False(t, f.Submitted())
	})

	t.Run("values follow header order", func(t *testing.T) {
		assert.Equal(t, []string{"Alice@x.edu", "3", "abc", ""}, rec.Values())
		assert.Equal(t, columns, rec.Columns())
	})

	t.Run("display name falls back to identity", func(t *testing.T) {
		assert.Equal(t, "Alice@x.edu", rec.DisplayName())
		rec.Name = "Alice Smith"
		assert.Equal(t, "Alice Smith", rec.DisplayName())
	})
}

func TestSnapshotIndex(t *testing.T) {
	columns := []string{"Email", "Project 1"}
	records := []*StudentRecord{
		NewStudentRecord("b@x.edu", "b@x.edu", 2, columns, []string{"b@x.edu", "1"}),
		NewStudentRecord("a@x.edu", "a@x.edu", 3, columns, []string{"a@x.edu", "2"}),
		NewStudentRecord("b@x.edu", "B@x.edu", 4, columns, []string{"B@x.edu", "9"}),
	}
	snap := NewSnapshot(Source{Path: "/tmp/new.csv", Side: SideNew}, columns, records, 42)

	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, []string{"b@x.edu", "a@x.edu"}, snap.Keys())
	assert.Equal(t, "/tmp/new.csv", snap.Name)

	got, ok := snap.Get("b@x.edu")
	require.True(t, ok)
	assert.Equal(t, 2, got.Row, "first record for a key is kept")

	assert.True(t, snap.HasColumn(" Project 1 "))
	assert.False(t, snap.HasColumn("Project 2"))
	assert.Equal(t, uint64(42), snap.Fingerprint)
}
