package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

// SideColumns names one column per export side.
type SideColumns struct {
	OldSide string `yaml:"old_side" envconfig:"OLD_SIDE"`
	NewSide string `yaml:"new_side" envconfig:"NEW_SIDE"`
}

// ReconcileConfig describes the two export schemas and how they line up.
type ReconcileConfig struct {
	LMSPattern      string `yaml:"lms_pattern" envconfig:"LMS_PATTERN"`
	PlatformPattern string `yaml:"platform_pattern" envconfig:"PLATFORM_PATTERN"`
	CompletersFile  string `yaml:"completers_file" envconfig:"COMPLETERS_FILE"`

	IdentityColumns IdentityColumns `yaml:"identity_columns" envconfig:"IDENTITY_COLUMNS"`
	NameColumns     SideColumns     `yaml:"name_columns" envconfig:"NAME_COLUMNS"`
	EmailColumns    SideColumns     `yaml:"email_columns" envconfig:"EMAIL_COLUMNS"`

	HeaderAnchors     []string            `yaml:"header_anchor_strings" envconfig:"HEADER_ANCHOR_STRINGS" validate:"dive,required"`
	SideHeaderAnchors map[string][]string `yaml:"side_header_anchors" ignored:"true" validate:"dive,keys,oneof=old_side new_side,endkeys"`

	// Canonical LMS display name -> platform column, in comparison order.
	AssignmentMapping yaml.MapSlice     `yaml:"assignment_mapping" ignored:"true"`
	BucketLabels      map[string]string `yaml:"bucket_labels" ignored:"true"`

	StatusColumns       []string `yaml:"status_columns" envconfig:"STATUS_COLUMNS"`
	ExcludedStatuses    []string `yaml:"excluded_statuses" envconfig:"EXCLUDED_STATUSES"`
	IgnoredIdentities   []string `yaml:"ignored_identities" envconfig:"IGNORED_IDENTITIES"`
	UnsubmittedPrefixes []string `yaml:"unsubmitted_prefixes" envconfig:"UNSUBMITTED_PREFIXES" validate:"dive,required"`

	OutputSuffixes OutputSuffixes `yaml:"output_suffixes" envconfig:"OUTPUT_SUFFIXES"`
}

// IdentityColumns are the join keys; both are mandatory.
type IdentityColumns struct {
	OldSide string `yaml:"old_side" envconfig:"OLD_SIDE" validate:"required"`
	NewSide string `yaml:"new_side" envconfig:"NEW_SIDE" validate:"required"`
}

// OutputSuffixes name the files written next to (or for) an input export.
type OutputSuffixes struct {
	Updated     string `yaml:"updated" envconfig:"UPDATED" validate:"required"`
	Unmatched   string `yaml:"unmatched" envconfig:"UNMATCHED" validate:"required"`
	Unsubmitted string `yaml:"unsubmitted" envconfig:"UNSUBMITTED" validate:"required"`
	Summary     string `yaml:"summary" envconfig:"SUMMARY" validate:"required"`
	Changes     string `yaml:"changes" envconfig:"CHANGES" validate:"required"`
	ChangesCSV  string `yaml:"changes_csv" envconfig:"CHANGES_CSV" validate:"required"`
	Roster      string `yaml:"roster" envconfig:"ROSTER" validate:"required"`
	Workbook    string `yaml:"workbook" envconfig:"WORKBOOK" validate:"required"`
}

// All lists every suffix; discovery skips files carrying one of them.
func (o OutputSuffixes) All() []string {
	return []string{o.Updated, o.Unmatched, o.Unsubmitted, o.Summary, o.Changes, o.ChangesCSV, o.Roster, o.Workbook}
}

// DefaultOutputSuffixes returns the file suffixes used when none are configured
func DefaultOutputSuffixes() OutputSuffixes {
	return OutputSuffixes{
		Updated:     "-updated.csv",
		Unmatched:   "-missing.csv",
		Unsubmitted: "-not-submitted.csv",
		Summary:     "-submission-summary.csv",
		Changes:     ".out",
		ChangesCSV:  "-changes.csv",
		Roster:      "-roster.csv",
		Workbook:    "-report.xlsx",
	}
}

// validateMapping checks the assignment table, which the struct tags cannot
// express: keys and values must be non-empty strings and keys unique.
func (r *ReconcileConfig) validateMapping() error {
	seen := make(map[string]struct{}, len(r.AssignmentMapping))
	for i, item := range r.AssignmentMapping {
		canonical, ok := item.Key.(string)
		if !ok || strings.TrimSpace(canonical) == "" {
			return apperrors.NewConfigError(
				fmt.Sprintf("reconcile.assignment_mapping entry %d has an empty or non-string name", i+1), nil).
				WithContext("key", "reconcile.assignment_mapping")
		}
		key := fmt.Sprintf("reconcile.assignment_mapping[%s]", canonical)
		if _, dup := seen[canonical]; dup {
			return apperrors.NewConfigError(fmt.Sprintf("%s is declared twice", key), nil).
				WithContext("key", key)
		}
		seen[canonical] = struct{}{}
		source, ok := item.Value.(string)
		if !ok || strings.TrimSpace(source) == "" {
			return apperrors.NewMissingKeyError(key)
		}
	}
	return nil
}

// RequireAssignments fails with a missing-key error when no assignment
// columns are configured. Commands that compare or copy grades call it
// before touching any file.
func (r *ReconcileConfig) RequireAssignments() error {
	if len(r.AssignmentMapping) == 0 {
		return apperrors.NewMissingKeyError("reconcile.assignment_mapping")
	}
	return nil
}

// Mapping builds the immutable column mapping shared by every component.
// Call it once per process and pass the result by pointer.
func (r *ReconcileConfig) Mapping() *domain.ColumnMapping {
	assignments := make([]domain.AssignmentColumn, 0, len(r.AssignmentMapping))
	for _, item := range r.AssignmentMapping {
		canonical, _ := item.Key.(string)
		source, _ := item.Value.(string)
		assignments = append(assignments, domain.AssignmentColumn{
			Canonical: strings.TrimSpace(canonical),
			Source:    strings.TrimSpace(source),
		})
	}

	sideAnchors := make(map[domain.Side][]string, len(r.SideHeaderAnchors))
	for side, anchors := range r.SideHeaderAnchors {
		sideAnchors[domain.Side(side)] = anchors
	}

	return domain.NewColumnMapping(domain.ColumnMapping{
		Identity: map[domain.Side]string{
			domain.SideOld: r.IdentityColumns.OldSide,
			domain.SideNew: r.IdentityColumns.NewSide,
		},
		Names: map[domain.Side]string{
			domain.SideOld: r.NameColumns.OldSide,
			domain.SideNew: r.NameColumns.NewSide,
		},
		Emails: map[domain.Side]string{
			domain.SideOld: r.EmailColumns.OldSide,
			domain.SideNew: r.EmailColumns.NewSide,
		},
		HeaderAnchors:       r.HeaderAnchors,
		SideAnchors:         sideAnchors,
		Assignments:         assignments,
		StatusColumns:       r.StatusColumns,
		ExcludedStatuses:    r.ExcludedStatuses,
		IgnoredIdentities:   r.IgnoredIdentities,
		UnsubmittedPrefixes: r.UnsubmittedPrefixes,
	}, r.BucketLabels)
}
