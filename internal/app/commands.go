package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	apperrors "gradesync/internal/errors"
	"gradesync/internal/exporter"
	"gradesync/internal/files"
	"gradesync/internal/gradebook"
	"gradesync/pkg/contracts/domain"
)

// Stage names, used for spans, metrics and PipelineResult.Failed.
const (
	StageUpdate      = "update"
	StageCompare     = "compare"
	StageSummarize   = "summarize"
	StageUnsubmitted = "unsubmitted"
	StageRoster      = "roster"
	StageCompleters  = "completers"
)

// CompletersReportName is the file the completers check is written to.
const CompletersReportName = "completers-comparison.csv"

// UpdateOptions selects the exports of an update run. Empty paths are
// discovered in the data directory by the configured patterns.
type UpdateOptions struct {
	LMSFile      string
	PlatformFile string
}

// UpdateResult describes a grade merge.
type UpdateResult struct {
	Report        *domain.RunReport
	LMSPath       string
	PlatformPath  string
	Match         *domain.MatchResult
	Merge         *gradebook.MergeResult
	UpdatedPath   string
	UnmatchedPath string

	sections []sheet
}

// Update copies the platform's grades into the newest LMS gradebook and lists
// the platform students the LMS does not know.
func (r *Runner) Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeUpdate)
	res, err := r.update(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) update(ctx context.Context, opts UpdateOptions, report *domain.RunReport) (*UpdateResult, error) {
	if err := r.cfg.Reconcile.RequireAssignments(); err != nil {
		return nil, err
	}

	res := &UpdateResult{Report: report}
	err := r.stage(ctx, StageUpdate, func(ctx context.Context) error {
		var err error
		res.LMSPath, err = r.resolveExport(ctx, opts.LMSFile, r.cfg.Reconcile.LMSPattern, "reconcile.lms_pattern", "LMS")
		if err != nil {
			return err
		}
		res.PlatformPath, err = r.resolveExport(ctx, opts.PlatformFile, r.cfg.Reconcile.PlatformPattern, "reconcile.platform_pattern", "platform")
		if err != nil {
			return err
		}

		lms, err := r.load(ctx, input{path: res.LMSPath, side: domain.SideOld}, report)
		if err != nil {
			return err
		}
		platform, err := r.load(ctx, input{path: res.PlatformPath, side: domain.SideNew}, report)
		if err != nil {
			return err
		}

		res.Match = gradebook.Match(lms, platform)
		r.metrics.RecordMatch(ctx, res.Match)
		res.Merge = gradebook.Merge(res.Match, r.mapping, lms.Columns)
		r.metrics.RecordWarnings(ctx, res.Merge.Warnings)
		report.Warnings = append(report.Warnings, res.Merge.Warnings...)

		suffixes := r.cfg.Reconcile.OutputSuffixes
		res.UpdatedPath = r.paths.ReportPath(res.LMSPath, suffixes.Updated)
		res.UnmatchedPath = r.paths.ReportPath(res.LMSPath, suffixes.Unmatched)

		merged := exporter.MergedTable(res.Merge)
		unmatched := exporter.UnmatchedTable(res.Merge.Unmatched)
		// both files are imported back into the LMS, so no BOM
		if err := r.writeCSV(res.UpdatedPath, merged, false, report); err != nil {
			return err
		}
		if err := r.writeCSV(res.UnmatchedPath, unmatched, false, report); err != nil {
			return err
		}
		res.sections = []sheet{{"Updated", merged}, {"Unmatched", unmatched}}

		r.logger.InfoContext(ctx, "Grades merged",
			slog.String("lms", res.LMSPath),
			slog.String("platform", res.PlatformPath),
			slog.Int("matched", len(res.Match.Matched)),
			slog.Int("unmatched", len(res.Merge.Unmatched)),
			slog.String("output", res.UpdatedPath))
		return nil
	})
	return res, err
}

// CompareOptions selects the two gradebooks to compare. When both are empty
// the two newest updated gradebooks are used.
type CompareOptions struct {
	OldFile string
	NewFile string
	// Dir is searched for updated gradebooks instead of the default location.
	Dir string
	// Append adds to an existing text report instead of replacing it.
	Append bool
}

// CompareResult describes a grade comparison.
type CompareResult struct {
	Report       *domain.RunReport
	OldPath      string
	NewPath      string
	Identical    bool
	Match        *domain.MatchResult
	Diff         *domain.DiffResult
	TextPath     string
	CSVPath      string
	WorkbookPath string

	sections []sheet
}

// Compare reports the grade changes between two LMS gradebooks.
func (r *Runner) Compare(ctx context.Context, opts CompareOptions) (*CompareResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeCompare)
	res, err := r.compare(ctx, opts, report)
	if err == nil {
		res.WorkbookPath = r.paths.ReportPath(res.NewPath, r.cfg.Reconcile.OutputSuffixes.Workbook)
		sections := append(res.sections, sheet{"Warnings", exporter.WarningsTable(report.Warnings)})
		err = r.writeWorkbook(res.WorkbookPath, sections, report)
	}
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) compare(ctx context.Context, opts CompareOptions, report *domain.RunReport) (*CompareResult, error) {
	if err := r.cfg.Reconcile.RequireAssignments(); err != nil {
		return nil, err
	}

	res := &CompareResult{Report: report}
	firstWarning := len(report.Warnings)
	err := r.stage(ctx, StageCompare, func(ctx context.Context) error {
		var err error
		res.OldPath, res.NewPath, err = r.comparePair(ctx, opts)
		if err != nil {
			return err
		}

		prev, err := r.load(ctx, input{path: res.OldPath, side: domain.SideOld}, report)
		if err != nil {
			return err
		}
		next, err := r.load(ctx, input{path: res.NewPath, side: domain.SideOld}, report)
		if err != nil {
			return err
		}
		if prev.Fingerprint == next.Fingerprint {
			res.Identical = true
			r.logger.InfoContext(ctx, "Gradebooks have identical content",
				slog.String("old", res.OldPath),
				slog.String("new", res.NewPath))
		}

		res.Match = gradebook.Match(prev, next)
		r.metrics.RecordMatch(ctx, res.Match)
		res.Diff = gradebook.Diff(res.Match.Matched, r.mapping.CanonicalNames())
		r.metrics.RecordDiff(ctx, res.Diff)
		report.Warnings = append(report.Warnings, res.Diff.Warnings...)

		suffixes := r.cfg.Reconcile.OutputSuffixes
		res.TextPath = r.paths.ReportPath(res.NewPath, suffixes.Changes)
		res.CSVPath = r.paths.ReportPath(res.NewPath, suffixes.ChangesCSV)

		deltas := res.Diff.Deltas
		warnings := textWarnings(report.Warnings[firstWarning:])
		oldName, newName := filepath.Base(res.OldPath), filepath.Base(res.NewPath)
		if err := r.writeText(res.TextPath, opts.Append, func(w io.Writer) error {
			return exporter.WriteChanges(w, oldName, newName, deltas, warnings)
		}, len(deltas), report); err != nil {
			return err
		}
		changes := exporter.ChangesTable(deltas)
		if err := r.writeCSV(res.CSVPath, changes, true, report); err != nil {
			return err
		}
		res.sections = []sheet{{"Changes", changes}}

		counts := res.Diff.CountByKind()
		r.logger.InfoContext(ctx, "Grades compared",
			slog.String("old", res.OldPath),
			slog.String("new", res.NewPath),
			slog.Int("matched", len(res.Match.Matched)),
			slog.Int("updated", counts[domain.DeltaUpdated]),
			slog.Int("new_grades", counts[domain.DeltaNewGrade]),
			slog.Int("missing_in_new", counts[domain.DeltaMissingInNew]),
			slog.String("output", res.TextPath))
		return nil
	})
	return res, err
}

// textWarnings drops the configured non-student rows, such as "Points
// Possible", which every LMS export carries.
func textWarnings(warnings []domain.Warning) []domain.Warning {
	var out []domain.Warning
	for _, w := range warnings {
		if w.Kind != domain.WarnIgnoredIdentity {
			out = append(out, w)
		}
	}
	return out
}

// comparePair returns the explicit pair, or the two newest updated gradebooks
// next to the newest LMS export (or in the reports directory).
func (r *Runner) comparePair(ctx context.Context, opts CompareOptions) (string, string, error) {
	switch {
	case opts.OldFile != "" && opts.NewFile != "":
		return absPath(opts.OldFile), absPath(opts.NewFile), nil
	case opts.OldFile != "" || opts.NewFile != "":
		return "", "", apperrors.NewAppValidationError("compare needs both the old and the new gradebook, or neither")
	}

	latest, err := r.latestUpdated(ctx, opts.Dir, 2)
	if err != nil {
		return "", "", err
	}
	return latest[1].Path, latest[0].Path, nil
}

// latestUpdated finds the n newest updated gradebooks in dir, by default the
// reports directory or the directory of the newest LMS export.
func (r *Runner) latestUpdated(ctx context.Context, dir string, n int) ([]files.FileInfo, error) {
	if dir == "" {
		dir = r.paths.ReportsDir
	}
	if dir == "" {
		lms, err := r.resolveExport(ctx, "", r.cfg.Reconcile.LMSPattern, "reconcile.lms_pattern", "LMS")
		if err != nil {
			return nil, err
		}
		dir = r.outputDir(lms)
	}

	suffix := r.cfg.Reconcile.OutputSuffixes.Updated
	found, err := r.discovery.FindOutputs(dir, suffix)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to scan for updated gradebooks", err).WithContext("dir", dir)
	}
	latest, err := files.Latest(found, n)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%d gradebooks ending in %s", n, suffix)).
			WithContext("dir", dir).
			WithContext("found", len(found))
	}
	for i := range latest {
		latest[i].Path = absPath(latest[i].Path)
	}
	return latest, nil
}

// SummarizeOptions selects the platform export to summarize.
type SummarizeOptions struct {
	PlatformFile string
}

// SummarizeResult holds per-project submission counts.
type SummarizeResult struct {
	Report       *domain.RunReport
	PlatformPath string
	Students     int
	Stats        []domain.AssignmentStat
	Path         string

	sections []sheet
}

// Summarize counts submissions per project in the newest platform export.
func (r *Runner) Summarize(ctx context.Context, opts SummarizeOptions) (*SummarizeResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeSummary)
	res, err := r.summarize(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) summarize(ctx context.Context, opts SummarizeOptions, report *domain.RunReport) (*SummarizeResult, error) {
	if err := r.cfg.Reconcile.RequireAssignments(); err != nil {
		return nil, err
	}

	res := &SummarizeResult{Report: report}
	err := r.stage(ctx, StageSummarize, func(ctx context.Context) error {
		var err error
		res.PlatformPath, err = r.resolveExport(ctx, opts.PlatformFile, r.cfg.Reconcile.PlatformPattern, "reconcile.platform_pattern", "platform")
		if err != nil {
			return err
		}
		snap, err := r.load(ctx, input{path: res.PlatformPath, side: domain.SideNew}, report)
		if err != nil {
			return err
		}

		stats, warnings := r.summarizer.Summarize(ctx, snap, r.mapping.SourceNames())
		r.metrics.RecordWarnings(ctx, warnings)
		report.Warnings = append(report.Warnings, warnings...)
		res.Stats = stats
		res.Students = snap.Len()

		res.Path = r.paths.ReportPath(res.PlatformPath, r.cfg.Reconcile.OutputSuffixes.Summary)
		table := exporter.SubmissionsTable(stats)
		if err := r.writeCSV(res.Path, table, true, report); err != nil {
			return err
		}
		res.sections = []sheet{{"Submissions", table}}

		r.logger.InfoContext(ctx, "Submissions summarized",
			slog.String("platform", res.PlatformPath),
			slog.Int("students", res.Students),
			slog.Int("projects", len(stats)),
			slog.String("output", res.Path))
		return nil
	})
	return res, err
}

// UnsubmittedOptions selects the gradebook to scan. Empty means the newest
// updated gradebook.
type UnsubmittedOptions struct {
	File string
}

// UnsubmittedResult lists the students with missing work.
type UnsubmittedResult struct {
	Report   *domain.RunReport
	FilePath string
	Missing  []domain.MissingSubmissions
	Path     string

	sections []sheet
}

// Unsubmitted lists, per student, the assignment columns with no submission.
func (r *Runner) Unsubmitted(ctx context.Context, opts UnsubmittedOptions) (*UnsubmittedResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeUnsubmitted)
	res, err := r.unsubmitted(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) unsubmitted(ctx context.Context, opts UnsubmittedOptions, report *domain.RunReport) (*UnsubmittedResult, error) {
	res := &UnsubmittedResult{Report: report}
	err := r.stage(ctx, StageUnsubmitted, func(ctx context.Context) error {
		res.FilePath = opts.File
		if res.FilePath != "" {
			res.FilePath = absPath(res.FilePath)
		} else {
			latest, err := r.latestUpdated(ctx, "", 1)
			if err != nil {
				return err
			}
			res.FilePath = latest[0].Path
		}

		snap, err := r.load(ctx, input{path: res.FilePath, side: domain.SideOld}, report)
		if err != nil {
			return err
		}
		res.Missing = gradebook.FindUnsubmitted(snap, r.mapping.UnsubmittedPrefixes)

		res.Path = r.paths.ReportPath(res.FilePath, r.cfg.Reconcile.OutputSuffixes.Unsubmitted)
		table := exporter.UnsubmittedTable(res.Missing)
		if err := r.writeCSV(res.Path, table, true, report); err != nil {
			return err
		}
		res.sections = []sheet{{"Unsubmitted", table}}

		r.logger.InfoContext(ctx, "Unsubmitted assignments found",
			slog.String("file", res.FilePath),
			slog.Int("students_with_gaps", len(res.Missing)),
			slog.String("output", res.Path))
		return nil
	})
	return res, err
}

// RosterOptions names the two class rosters to compare.
type RosterOptions struct {
	CurrentFile   string
	ReferenceFile string
}

// RosterResult describes the returning-student comparison.
type RosterResult struct {
	Report       *domain.RunReport
	Roster       *gradebook.RosterReport
	Sections     []domain.TallyEntry
	Grades       []domain.TallyEntry
	Path         string
	WorkbookPath string
}

// Roster finds the students of the current roster who were in the reference
// roster, with their current section and their previous grade.
func (r *Runner) Roster(ctx context.Context, opts RosterOptions) (*RosterResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeRoster)
	res, err := r.roster(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) roster(ctx context.Context, opts RosterOptions, report *domain.RunReport) (*RosterResult, error) {
	if opts.CurrentFile == "" || opts.ReferenceFile == "" {
		return nil, apperrors.NewAppValidationError("roster needs both the current and the reference roster")
	}

	cfg := r.cfg.Roster
	res := &RosterResult{Report: report}
	err := r.stage(ctx, StageRoster, func(ctx context.Context) error {
		in := input{side: domain.SideOld, identity: cfg.ReturningIdentityColumn, anchors: []string{cfg.ReturningIdentityColumn}}

		currentPath := absPath(opts.CurrentFile)
		in.path = currentPath
		current, err := r.load(ctx, in, report)
		if err != nil {
			return err
		}
		in.path = absPath(opts.ReferenceFile)
		reference, err := r.load(ctx, in, report)
		if err != nil {
			return err
		}

		res.Roster = gradebook.CompareRosters(current, reference)
		var sections []sheet
		columns := exporter.RosterColumns{}
		if cfg.SectionColumn != "" && current.HasColumn(cfg.SectionColumn) {
			columns.Section = cfg.SectionColumn
			res.Sections = gradebook.Tally(res.Roster.CurrentRecords(), cfg.SectionColumn, nil)
		}
		if cfg.GradeColumn != "" && reference.HasColumn(cfg.GradeColumn) {
			columns.Grade = cfg.GradeColumn
			res.Grades = gradebook.Tally(res.Roster.ReferenceRecords(), cfg.GradeColumn, cfg.GradeOrder)
		}

		returning := exporter.RosterTable(res.Roster, columns)
		res.Path = r.paths.ReportPath(currentPath, r.cfg.Reconcile.OutputSuffixes.Roster)
		if err := r.writeCSV(res.Path, returning, true, report); err != nil {
			return err
		}

		newcomers := exporter.Table{Headers: []string{"Name", "ID"}}
		for _, rec := range res.Roster.NotInReference {
			newcomers.Records = append(newcomers.Records, []string{rec.DisplayName(), rec.Identity})
		}
		sections = append(sections, sheet{"Returning", returning})
		if columns.Section != "" {
			sections = append(sections, sheet{"Sections", exporter.TallyTable(columns.Section, res.Sections)})
		}
		if columns.Grade != "" {
			sections = append(sections, sheet{"Grades", exporter.TallyTable(columns.Grade, res.Grades)})
		}
		sections = append(sections, sheet{"New Students", newcomers})

		res.WorkbookPath = r.paths.ReportPath(currentPath, r.cfg.Reconcile.OutputSuffixes.Workbook)
		if err := r.writeWorkbook(res.WorkbookPath, sections, report); err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "Rosters compared",
			slog.Int("current", res.Roster.CurrentTotal),
			slog.Int("returning", len(res.Roster.Returning)),
			slog.String("returning_rate", fmt.Sprintf("%.1f%%", res.Roster.ReturningRate())),
			slog.String("output", res.Path))
		return nil
	})
	return res, err
}

// CompletersOptions names the completers list and the roster to check it
// against. Empty values fall back to the configured completers file and the
// newest platform export.
type CompletersOptions struct {
	CompletersFile string
	RosterFile     string
}

// CompletersResult tells which program completers are enrolled.
type CompletersResult struct {
	Report   *domain.RunReport
	Statuses []gradebook.CompleterStatus
	InRoster int
	Path     string
}

// Completers checks each name of the completers list against the roster.
func (r *Runner) Completers(ctx context.Context, opts CompletersOptions) (*CompletersResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypeCompleters)
	res, err := r.completers(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) completers(ctx context.Context, opts CompletersOptions, report *domain.RunReport) (*CompletersResult, error) {
	completersFile := opts.CompletersFile
	if completersFile == "" {
		completersFile = r.cfg.Reconcile.CompletersFile
		if completersFile == "" {
			return nil, apperrors.NewMissingKeyError("reconcile.completers_file")
		}
		if !filepath.IsAbs(completersFile) {
			completersFile = filepath.Join(r.paths.DataDir, completersFile)
		}
	}

	res := &CompletersResult{Report: report}
	err := r.stage(ctx, StageCompleters, func(ctx context.Context) error {
		rosterPath, err := r.resolveExport(ctx, opts.RosterFile, r.cfg.Reconcile.PlatformPattern, "reconcile.platform_pattern", "platform")
		if err != nil {
			return err
		}

		column := r.cfg.Roster.CompletersIdentityColumn
		completers, err := r.load(ctx, input{
			path:     absPath(completersFile),
			side:     domain.SideNew,
			identity: column,
			anchors:  []string{column},
		}, report)
		if err != nil {
			return err
		}
		roster, err := r.load(ctx, input{path: rosterPath, side: domain.SideNew}, report)
		if err != nil {
			return err
		}

		res.Statuses = gradebook.FindCompleters(completers, roster)
		for _, s := range res.Statuses {
			if s.InRoster {
				res.InRoster++
			}
		}

		res.Path = r.paths.GetReportPath(CompletersReportName)
		if err := r.writeCSV(res.Path, exporter.CompletersTable(res.Statuses), true, report); err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "Completers checked",
			slog.Int("completers", len(res.Statuses)),
			slog.Int("in_roster", res.InRoster),
			slog.String("output", res.Path))
		return nil
	})
	return res, err
}

// PipelineOptions selects the exports of a full run.
type PipelineOptions struct {
	LMSFile      string
	PlatformFile string
}

// PipelineResult collects the results of every stage. A stage that failed
// after the update is named in Failed and its result is nil.
type PipelineResult struct {
	Report       *domain.RunReport
	Update       *UpdateResult
	Compare      *CompareResult
	Unsubmitted  *UnsubmittedResult
	Summary      *SummarizeResult
	Failed       []string
	WorkbookPath string
}

// Pipeline runs update, compare, unsubmitted and summarize in order. A failed
// update stops the run; later stages are independent and a failure is logged
// and skipped.
func (r *Runner) Pipeline(ctx context.Context, opts PipelineOptions) (*PipelineResult, error) {
	ctx, report := r.begin(ctx, domain.ReportTypePipeline)
	res, err := r.pipeline(ctx, opts, report)
	r.finish(ctx, report, err)
	return res, err
}

func (r *Runner) pipeline(ctx context.Context, opts PipelineOptions, report *domain.RunReport) (*PipelineResult, error) {
	res := &PipelineResult{Report: report}

	upd, err := r.update(ctx, UpdateOptions(opts), report)
	if err != nil {
		return res, fmt.Errorf("%s stage: %w", StageUpdate, err)
	}
	res.Update = upd
	sections := append([]sheet(nil), upd.sections...)

	failed := func(stage string, err error) {
		res.Failed = append(res.Failed, stage)
		r.logger.WarnContext(ctx, "Stage failed, continuing",
			slog.String("stage", stage),
			slog.String("error", err.Error()))
	}

	if cmp, err := r.compare(ctx, CompareOptions{Dir: filepath.Dir(upd.UpdatedPath)}, report); err != nil {
		failed(StageCompare, err)
	} else {
		res.Compare = cmp
		sections = append(sections, cmp.sections...)
	}

	if uns, err := r.unsubmitted(ctx, UnsubmittedOptions{File: upd.UpdatedPath}, report); err != nil {
		failed(StageUnsubmitted, err)
	} else {
		res.Unsubmitted = uns
		sections = append(sections, uns.sections...)
	}

	if sum, err := r.summarize(ctx, SummarizeOptions{PlatformFile: upd.PlatformPath}, report); err != nil {
		failed(StageSummarize, err)
	} else {
		res.Summary = sum
		sections = append(sections, sum.sections...)
	}

	sections = append(sections, sheet{"Warnings", exporter.WarningsTable(report.Warnings)})
	res.WorkbookPath = r.paths.ReportPath(upd.LMSPath, r.cfg.Reconcile.OutputSuffixes.Workbook)
	if err := r.writeWorkbook(res.WorkbookPath, sections, report); err != nil {
		return res, err
	}
	return res, nil
}
