package gradebook

import (
	"strings"

	"gradesync/pkg/contracts/domain"
)

// AssignmentColumns returns the header columns starting with one of the
// prefixes, in header order.
func AssignmentColumns(columns, prefixes []string) []string {
	var out []string
	for _, c := range columns {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// FindUnsubmitted lists, for every student with a gap, the assignment
// columns that hold no submission. Students are in row order.
func FindUnsubmitted(snap *domain.Snapshot, prefixes []string) []domain.MissingSubmissions {
	columns := AssignmentColumns(snap.Columns, prefixes)

	var out []domain.MissingSubmissions
	for _, r := range snap.Records() {
		var missing []string
		for _, c := range columns {
			if !r.Field(c).Submitted() {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			out = append(out, domain.MissingSubmissions{
				Student:     r.Identity,
				Name:        r.DisplayName(),
				Assignments: missing,
			})
		}
	}
	return out
}
