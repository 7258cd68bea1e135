package gradebook

import (
	"sort"
	"strings"

	"gradesync/pkg/contracts/domain"
)

// NotAvailable labels a blank tally value.
const NotAvailable = "N/A"

// RosterReport compares a current class roster with a reference roster.
type RosterReport struct {
	// Returning pairs a current student (New) with their reference row (Old),
	// sorted by display name.
	Returning      []domain.MatchedPair
	NotInReference []*domain.StudentRecord
	NotInCurrent   []*domain.StudentRecord
	CurrentTotal   int
}

// ReturningRate is the share of the current roster found in the reference,
// in percent.
func (r *RosterReport) ReturningRate() float64 {
	if r.CurrentTotal == 0 {
		return 0
	}
	return float64(len(r.Returning)) / float64(r.CurrentTotal) * 100
}

// CurrentRecords returns the current-roster rows of the returning students.
func (r *RosterReport) CurrentRecords() []*domain.StudentRecord {
	out := make([]*domain.StudentRecord, len(r.Returning))
	for i, p := range r.Returning {
		out[i] = p.New
	}
	return out
}

// ReferenceRecords returns the reference-roster rows of the returning students.
func (r *RosterReport) ReferenceRecords() []*domain.StudentRecord {
	out := make([]*domain.StudentRecord, len(r.Returning))
	for i, p := range r.Returning {
		out[i] = p.Old
	}
	return out
}

// CompareRosters finds the students of current that also appear in
// reference. Both snapshots should be keyed by the same identity column.
func CompareRosters(current, reference *domain.Snapshot) *RosterReport {
	match := Match(reference, current)
	returning := append([]domain.MatchedPair(nil), match.Matched...)
	sort.SliceStable(returning, func(i, j int) bool {
		return returning[i].New.DisplayName() < returning[j].New.DisplayName()
	})
	return &RosterReport{
		Returning:      returning,
		NotInReference: match.NewOnly,
		NotInCurrent:   match.OldOnly,
		CurrentTotal:   current.Len(),
	}
}

// Tally counts the values of column across records. Labels listed in order
// come first in that order, any others follow alphabetically. Blank values
// count as N/A.
func Tally(records []*domain.StudentRecord, column string, order []string) []domain.TallyEntry {
	counts := make(map[string]int)
	for _, r := range records {
		v, _ := r.Value(column)
		v = strings.TrimSpace(v)
		if v == "" {
			v = NotAvailable
		}
		counts[v]++
	}

	out := make([]domain.TallyEntry, 0, len(counts))
	listed := make(map[string]bool, len(order))
	for _, label := range order {
		listed[label] = true
		if n := counts[label]; n > 0 {
			out = append(out, domain.TallyEntry{Label: label, Count: n})
		}
	}

	var rest []string
	for label := range counts {
		if !listed[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		out = append(out, domain.TallyEntry{Label: label, Count: counts[label]})
	}
	return out
}

// CompleterStatus tells whether a program completer is on the class roster.
type CompleterStatus struct {
	Name     string
	InRoster bool
}

// FindCompleters checks every completer against the roster by normalized
// display name. The result is sorted by name.
func FindCompleters(completers, roster *domain.Snapshot) []CompleterStatus {
	names := NewIdentitySet(roster.Records(), ByName)

	out := make([]CompleterStatus, 0, completers.Len())
	for _, r := range completers.Records() {
		out = append(out, CompleterStatus{
			Name:     r.DisplayName(),
			InRoster: names.Contains(ByName(r)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
