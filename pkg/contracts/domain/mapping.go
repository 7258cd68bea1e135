package domain

import (
	"strings"
)

// Side identifies which export schema a file follows.
// SideOld is the LMS gradebook export (Canvas), SideNew the bootcamp-platform
// export (CodePath). Two LMS snapshots taken at different times are both SideOld.
type Side string

const (
	SideOld Side = "old_side"
	SideNew Side = "new_side"
)

// AssignmentColumn links a canonical LMS display name to the platform column
// that carries the same grade.
type AssignmentColumn struct {
	Canonical string `json:"canonical"`
	Source    string `json:"source"`
	Bucket    string `json:"bucket"`
}

// ColumnMapping is the resolved, read-only configuration shared by every
// component. Build it once with NewColumnMapping and pass it by pointer.
type ColumnMapping struct {
	Identity            map[Side]string
	Names               map[Side]string
	Emails              map[Side]string
	HeaderAnchors       []string
	SideAnchors         map[Side][]string
	Assignments         []AssignmentColumn
	StatusColumns       []string
	ExcludedStatuses    []string
	IgnoredIdentities   []string
	UnsubmittedPrefixes []string

	buckets map[string]string
	sources map[string]string
}

// NewColumnMapping freezes the assignment table and computes the bucket label
// of every canonical and source column. Labels given in overrides (keyed by
// canonical name) win over the derived ones.
func NewColumnMapping(m ColumnMapping, overrides map[string]string) *ColumnMapping {
	out := m
	out.Assignments = make([]AssignmentColumn, len(m.Assignments))
	out.buckets = make(map[string]string, len(m.Assignments)*2)
	out.sources = make(map[string]string, len(m.Assignments))

	for i, a := range m.Assignments {
		bucket := strings.TrimSpace(overrides[a.Canonical])
		if bucket == "" {
			bucket = a.Bucket
		}
		if bucket == "" {
			bucket = BucketLabel(a.Canonical)
		}
		a.Bucket = bucket
		out.Assignments[i] = a
		out.buckets[a.Canonical] = bucket
		if a.Source != "" {
			if _, exists := out.buckets[a.Source]; !exists {
				out.buckets[a.Source] = bucket
			}
		}
		out.sources[a.Canonical] = a.Source
	}
	return &out
}

// IdentityColumn returns the join-key column for the given side.
func (m *ColumnMapping) IdentityColumn(side Side) string {
	return m.Identity[side]
}

// NameColumn returns the display-name column for the given side, if any.
func (m *ColumnMapping) NameColumn(side Side) string {
	return m.Names[side]
}

// EmailColumn returns the column holding the student's email, if any.
func (m *ColumnMapping) EmailColumn(side Side) string {
	return m.Emails[side]
}

// AnchorsFor returns the header anchors used for exports of one side.
// A side without its own list uses the shared HeaderAnchors.
func (m *ColumnMapping) AnchorsFor(side Side) []string {
	if anchors := m.SideAnchors[side]; len(anchors) > 0 {
		return anchors
	}
	return m.HeaderAnchors
}

// CanonicalNames lists the LMS assignment names in declaration order.
func (m *ColumnMapping) CanonicalNames() []string {
	names := make([]string, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		names = append(names, a.Canonical)
	}
	return names
}

// SourceNames lists the platform assignment columns in declaration order.
func (m *ColumnMapping) SourceNames() []string {
	names := make([]string, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		names = append(names, a.Source)
	}
	return names
}

// SourceFor returns the platform column mapped to a canonical name.
func (m *ColumnMapping) SourceFor(canonical string) (string, bool) {
	src, ok := m.sources[canonical]
	return src, ok
}

// BucketFor returns the project bucket of a canonical or source column.
// Columns outside the mapping get a label derived from their own name.
func (m *ColumnMapping) BucketFor(column string) string {
	if b, ok := m.buckets[column]; ok {
		return b
	}
	return BucketLabel(column)
}

// IsExcludedStatus reports whether an enrollment status value removes a row.
func (m *ColumnMapping) IsExcludedStatus(status string) bool {
	return containsFold(m.ExcludedStatuses, status)
}

// IsIgnoredIdentity reports whether an identity value marks a non-student row
// such as Canvas' "Points Possible".
func (m *ColumnMapping) IsIgnoredIdentity(identity string) bool {
	return containsFold(m.IgnoredIdentities, identity)
}

func containsFold(values []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, candidate := range values {
		if strings.EqualFold(strings.TrimSpace(candidate), v) {
			return true
		}
	}
	return false
}

// BucketLabel derives the project label of a display name:
// "Project 3: Foo (1234)" -> "Project 3", "Final Project: App (99)" -> "Final".
func BucketLabel(name string) string {
	label := name
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	label = strings.TrimSpace(label)
	if strings.Contains(label, "Final Project:") {
		return "Final"
	}
	if i := strings.Index(label, ":"); i >= 0 {
		label = label[:i]
	}
	return strings.Join(strings.Fields(label), " ")
}
