package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"gradesync/internal/config"
	apperrors "gradesync/internal/errors"
	"gradesync/internal/exporter"
	"gradesync/internal/files"
	"gradesync/internal/gradebook"
	"gradesync/internal/infrastructure"
	"gradesync/pkg/contracts/domain"
)

// Runner executes the gradesync commands. Every command reads its inputs,
// runs the engine, writes its reports and returns a RunReport.
type Runner struct {
	cfg     *config.Config
	paths   *config.Paths
	mapping *domain.ColumnMapping
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.ReconcileMetrics

	discovery  *files.Discovery
	reader     *files.Reader
	files      *files.Manager
	csv        *exporter.CSVWriter
	parser     *gradebook.Parser
	summarizer *gradebook.Summarizer
}

// NewRunner wires the components. A nil tracer disables tracing and nil
// metrics record nothing.
func NewRunner(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.ReconcileMetrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}

	paths := cfg.GetPaths()
	mapping := cfg.Reconcile.Mapping()
	manager := files.NewManager(paths, infrastructure.WithComponent(logger, "files"))

	return &Runner{
		cfg:        cfg,
		paths:      paths,
		mapping:    mapping,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		discovery:  files.NewDiscovery(paths.DataDir),
		reader:     files.NewReader(infrastructure.WithComponent(logger, "reader")),
		files:      manager,
		csv:        exporter.NewCSVWriter(manager, infrastructure.WithComponent(logger, "exporter")),
		parser:     gradebook.NewParser(mapping, infrastructure.WithComponent(logger, "parser")),
		summarizer: gradebook.NewSummarizer(mapping, infrastructure.WithComponent(logger, "summarizer")),
	}
}

// Mapping returns the column mapping the runner was built with.
func (r *Runner) Mapping() *domain.ColumnMapping {
	return r.mapping
}

// begin makes sure ctx carries a run ID and opens the run report.
func (r *Runner) begin(ctx context.Context, typ domain.ReportType) (context.Context, *domain.RunReport) {
	ctx = infrastructure.EnsureRunID(ctx)
	return ctx, &domain.RunReport{
		ID:        infrastructure.GetRunID(ctx),
		Type:      typ,
		StartedAt: time.Now(),
	}
}

// finish closes the run report and logs its totals.
func (r *Runner) finish(ctx context.Context, report *domain.RunReport, err error) {
	report.FinishedAt = time.Now()
	attrs := []any{
		slog.String("type", string(report.Type)),
		slog.Int("inputs", len(report.Inputs)),
		slog.Int("outputs", len(report.Outputs)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", report.Duration()),
	}
	if err != nil {
		infrastructure.WithError(r.logger, err).WarnContext(ctx, "Run aborted", attrs...)
		return
	}
	r.logger.InfoContext(ctx, "Run completed", attrs...)
}

// stage runs fn inside a span named after the stage and records its duration.
func (r *Runner) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("run.id", infrastructure.GetRunID(ctx))))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	r.metrics.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

// input is one export to parse.
type input struct {
	path string
	side domain.Side
	// identity and anchors override the side's configuration when set
	identity string
	anchors  []string
}

// load reads and parses one export, adding it and its warnings to report.
func (r *Runner) load(ctx context.Context, in input, report *domain.RunReport) (*domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "parse", trace.WithAttributes(
		attribute.String("file.path", in.path),
		attribute.String("side", string(in.side))))
	defer span.End()

	src, err := r.reader.ReadSource(ctx, in.path, in.side)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	src.IdentityColumn = in.identity
	src.Anchors = in.anchors

	snap, warnings, err := r.parser.ParseWithWarnings(ctx, src)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("records", snap.Len()),
		attribute.Int("warnings", len(warnings)))

	r.metrics.RecordSnapshot(ctx, snap, warnings)
	report.AddInput(snap)
	report.Warnings = append(report.Warnings, warnings...)
	return snap, nil
}

// resolveExport returns explicit when set, otherwise the newest export in the
// data directory whose name matches the pattern configured under key.
// Returned paths are absolute so derived report paths stay next to the input.
func (r *Runner) resolveExport(ctx context.Context, explicit, pattern, key, label string) (string, error) {
	if explicit != "" {
		return absPath(explicit), nil
	}
	if pattern == "" {
		return "", apperrors.NewMissingKeyError(key)
	}
	found, err := r.discovery.FindExports("", pattern, r.cfg.Reconcile.OutputSuffixes.All())
	if err != nil {
		return "", apperrors.NewStorageError("failed to scan for exports", err).
			WithContext("dir", r.paths.DataDir)
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", apperrors.NewNotFoundError(label+" export").
			WithContext("pattern", pattern).
			WithContext("dir", r.paths.DataDir)
	}
	r.logger.InfoContext(ctx, "Using latest export",
		slog.String("label", label),
		slog.String("path", latest.Path),
		slog.Time("modified", latest.ModTime))
	return absPath(latest.Path), nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// writeCSV writes a table and records it as an output of the run.
func (r *Runner) writeCSV(path string, t exporter.Table, bom bool, report *domain.RunReport) error {
	if err := r.csv.WriteCSV(path, t, exporter.WriteOptions{BOMPrefix: bom}); err != nil {
		return err
	}
	report.AddOutput(path, domain.ReportFormatCSV, t.Len())
	return nil
}

// sheet is one section of a report workbook.
type sheet struct {
	name  string
	table exporter.Table
}

// writeWorkbook writes the sections plus the Run sheet. The Run sheet lists
// the workbook itself among the outputs.
func (r *Runner) writeWorkbook(path string, sheets []sheet, report *domain.RunReport) error {
	wb, err := exporter.NewWorkbook()
	if err != nil {
		return err
	}
	defer wb.Close()

	rows := 0
	for _, s := range sheets {
		if err := wb.AddSheet(s.name, s.table); err != nil {
			return err
		}
		rows += s.table.Len()
	}
	report.AddOutput(path, domain.ReportFormatExcel, rows)
	if err := wb.AddRunSheet(report); err != nil {
		return err
	}
	return r.files.WriteFile(path, wb.Write)
}

// outputDir is where reports derived from input are written.
func (r *Runner) outputDir(input string) string {
	if r.paths.ReportsDir != "" {
		return r.paths.ReportsDir
	}
	return filepath.Dir(input)
}

// writeText writes a plain-text report, replacing or appending.
func (r *Runner) writeText(path string, appendTo bool, fn func(w io.Writer) error, rows int, report *domain.RunReport) error {
	write := r.files.WriteFile
	if appendTo {
		write = r.files.AppendFile
	}
	if err := write(path, fn); err != nil {
		return err
	}
	report.AddOutput(path, domain.ReportFormatText, rows)
	return nil
}
