package gradebook

import (
	"fmt"
	"strings"

	"gradesync/pkg/contracts/domain"
)

// MergeResult is the LMS gradebook with platform grades copied in.
type MergeResult struct {
	Columns   []string
	Rows      [][]string
	Unmatched []string
	Warnings  []domain.Warning
}

// Merge copies, for every matched pair in platform order, the LMS row with
// each canonical assignment overwritten by the platform's source column.
// A source column the platform file lacks is written as blank. Platform
// students without an LMS row are listed, lowercased, in Unmatched.
// The pairs' Old side must be the LMS snapshot.
func Merge(match *domain.MatchResult, m *domain.ColumnMapping, lmsColumns []string) *MergeResult {
	res := &MergeResult{Columns: append([]string(nil), lmsColumns...)}

	pos := columnPositions(lmsColumns)
	for _, a := range m.Assignments {
		if _, ok := pos[a.Canonical]; !ok {
			res.Warnings = append(res.Warnings, domain.Warning{
				Kind:       domain.WarnMissingColumn,
				Assignment: a.Canonical,
				Message:    fmt.Sprintf("column %q not found in LMS file, grade not copied", a.Canonical),
			})
		}
	}

	reportedSources := make(map[string]bool)
	for _, pair := range match.Matched {
		row := pair.Old.Values()
		for _, a := range m.Assignments {
			i, ok := pos[a.Canonical]
			if !ok {
				continue
			}
			v, present := pair.New.Value(a.Source)
			if !present && !reportedSources[a.Source] {
				reportedSources[a.Source] = true
				res.Warnings = append(res.Warnings, domain.Warning{
					Kind:       domain.WarnMissingColumn,
					Assignment: a.Source,
					Message:    fmt.Sprintf("column %q not found in platform file, written as blank", a.Source),
				})
			}
			row[i] = strings.TrimSpace(v)
		}
		res.Rows = append(res.Rows, row)
	}

	for _, r := range match.NewOnly {
		res.Unmatched = append(res.Unmatched, strings.ToLower(r.Identity))
	}
	return res
}
