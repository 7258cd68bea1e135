package exporter

import (
	"strings"

	"gradesync/internal/gradebook"
	"gradesync/pkg/contracts/domain"
)

// ChangesTable lists grade deltas one per row.
func ChangesTable(deltas []domain.GradeDelta) Table {
	t := Table{Headers: []string{"Student", "Name", "Assignment", "Old", "New", "Change"}}
	for _, d := range deltas {
		t.Records = append(t.Records, []string{
			d.Student, d.Name, d.Assignment, d.Old.String(), d.New.String(), string(d.Kind),
		})
	}
	return t
}

// SubmissionsTable renders the per-project submission summary.
func SubmissionsTable(stats []domain.AssignmentStat) Table {
	t := Table{Headers: []string{"Project", "Submitted", "Unsubmitted", "Total", "Percentage"}}
	for _, s := range stats {
		t.Records = append(t.Records, []string{
			s.Bucket,
			formatInt(s.Submitted),
			formatInt(s.Unsubmitted),
			formatInt(s.Total),
			formatPercent(s.Percentage),
		})
	}
	return t
}

// UnsubmittedTable renders one row per student with gaps. An empty list
// still produces a row saying so.
func UnsubmittedTable(missing []domain.MissingSubmissions) Table {
	t := Table{Headers: []string{"Student", "Missing Assignments"}}
	if len(missing) == 0 {
		t.Records = [][]string{{"No missing assignments found", ""}}
		return t
	}
	for _, m := range missing {
		t.Records = append(t.Records, []string{m.Name, strings.Join(m.Assignments, ", ")})
	}
	return t
}

// MergedTable is the updated LMS gradebook, ready for import.
func MergedTable(res *gradebook.MergeResult) Table {
	return Table{Headers: res.Columns, Records: res.Rows}
}

// UnmatchedTable lists platform emails that have no LMS row.
func UnmatchedTable(emails []string) Table {
	t := Table{Headers: []string{"Email"}}
	for _, e := range emails {
		t.Records = append(t.Records, []string{e})
	}
	return t
}

// RosterColumns selects the optional columns of the returning-student
// report: Section is read from the current roster, Grade from the reference.
type RosterColumns struct {
	Section string
	Grade   string
}

// RosterTable lists the returning students.
func RosterTable(report *gradebook.RosterReport, cols RosterColumns) Table {
	t := Table{Headers: []string{"Name", "ID"}}
	if cols.Section != "" {
		t.Headers = append(t.Headers, cols.Section)
	}
	if cols.Grade != "" {
		t.Headers = append(t.Headers, "Previous "+cols.Grade)
	}

	for _, p := range report.Returning {
		row := []string{p.New.DisplayName(), p.New.Identity}
		if cols.Section != "" {
			row = append(row, cellOrNA(p.New, cols.Section))
		}
		if cols.Grade != "" {
			row = append(row, cellOrNA(p.Old, cols.Grade))
		}
		t.Records = append(t.Records, row)
	}
	return t
}

func cellOrNA(r *domain.StudentRecord, column string) string {
	v, _ := r.Value(column)
	if v = strings.TrimSpace(v); v == "" {
		return gradebook.NotAvailable
	}
	return v
}

// TallyTable renders a label breakdown such as students per section.
func TallyTable(label string, entries []domain.TallyEntry) Table {
	t := Table{Headers: []string{label, "Students"}}
	for _, e := range entries {
		t.Records = append(t.Records, []string{e.Label, formatInt(e.Count)})
	}
	return t
}

// CompletersTable tells for each program completer whether they are enrolled.
func CompletersTable(statuses []gradebook.CompleterStatus) Table {
	t := Table{Headers: []string{"Student Name", "In Roster"}}
	for _, s := range statuses {
		t.Records = append(t.Records, []string{s.Name, formatYesNo(s.InRoster)})
	}
	return t
}

// WarningsTable lists recoverable problems met during a run.
func WarningsTable(warnings []domain.Warning) Table {
	t := Table{Headers: []string{"Kind", "File", "Row", "Student", "Assignment", "Message"}}
	for _, w := range warnings {
		t.Records = append(t.Records, []string{
			string(w.Kind), w.Path, formatRow(w.Row), w.Student, w.Assignment, w.Message,
		})
	}
	return t
}
