package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gradesync/pkg/contracts/domain"
)

// ReconcileMetrics holds the counters of one reconciliation run. A nil
// *ReconcileMetrics is valid and records nothing.
type ReconcileMetrics struct {
	rowsParsed       metric.Int64Counter
	rowsSkipped      metric.Int64Counter
	snapshotsParsed  metric.Int64Counter
	pairsMatched     metric.Int64Counter
	recordsUnmatched metric.Int64Counter
	deltas           metric.Int64Counter
	warnings         metric.Int64Counter
	stageDuration    metric.Float64Histogram
	memoryAllocated  metric.Int64Gauge
}

// NewReconcileMetrics creates the instruments on meter
func NewReconcileMetrics(meter metric.Meter) (*ReconcileMetrics, error) {
	rowsParsed, err := meter.Int64Counter(
		"gradesync_rows_parsed",
		metric.WithDescription("Student rows accepted into a snapshot"),
	)
	if err != nil {
		return nil, err
	}

	rowsSkipped, err := meter.Int64Counter(
		"gradesync_rows_skipped",
		metric.WithDescription("Rows dropped while parsing, by reason"),
	)
	if err != nil {
		return nil, err
	}

	snapshotsParsed, err := meter.Int64Counter(
		"gradesync_snapshots_parsed",
		metric.WithDescription("Exports parsed into snapshots"),
	)
	if err != nil {
		return nil, err
	}

	pairsMatched, err := meter.Int64Counter(
		"gradesync_pairs_matched",
		metric.WithDescription("Students matched across two snapshots, by matcher pass"),
	)
	if err != nil {
		return nil, err
	}

	recordsUnmatched, err := meter.Int64Counter(
		"gradesync_records_unmatched",
		metric.WithDescription("Students present in only one snapshot, by side"),
	)
	if err != nil {
		return nil, err
	}

	deltas, err := meter.Int64Counter(
		"gradesync_grade_deltas",
		metric.WithDescription("Grade changes detected, by kind"),
	)
	if err != nil {
		return nil, err
	}

	warnings, err := meter.Int64Counter(
		"gradesync_warnings",
		metric.WithDescription("Recoverable problems reported, by kind"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"gradesync_stage_duration_seconds",
		metric.WithDescription("Duration of a pipeline stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	memoryAllocated, err := meter.Int64Gauge(
		"gradesync_memory_allocated_bytes",
		metric.WithDescription("Heap allocated at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &ReconcileMetrics{
		rowsParsed:       rowsParsed,
		rowsSkipped:      rowsSkipped,
		snapshotsParsed:  snapshotsParsed,
		pairsMatched:     pairsMatched,
		recordsUnmatched: recordsUnmatched,
		deltas:           deltas,
		warnings:         warnings,
		stageDuration:    stageDuration,
		memoryAllocated:  memoryAllocated,
	}, nil
}

// skipReasons maps parser warnings to the rows_skipped reason label
var skipReasons = map[domain.WarningKind]bool{
	domain.WarnBlankIdentity:     true,
	domain.WarnExcludedStatus:    true,
	domain.WarnIgnoredIdentity:   true,
	domain.WarnDuplicateIdentity: true,
}

// RecordSnapshot counts the accepted and skipped rows of one parse
func (m *ReconcileMetrics) RecordSnapshot(ctx context.Context, snap *domain.Snapshot, warnings []domain.Warning) {
	if m == nil || snap == nil {
		return
	}
	side := attribute.String("side", string(snap.Side))
	m.snapshotsParsed.Add(ctx, 1, metric.WithAttributes(side))
	m.rowsParsed.Add(ctx, int64(snap.Len()), metric.WithAttributes(side))
	for _, w := range warnings {
		if skipReasons[w.Kind] {
			m.rowsSkipped.Add(ctx, 1, metric.WithAttributes(side, attribute.String("reason", string(w.Kind))))
		}
	}
	m.RecordWarnings(ctx, warnings)
}

// RecordMatch counts matched pairs per pass and the unmatched records
func (m *ReconcileMetrics) RecordMatch(ctx context.Context, res *domain.MatchResult) {
	if m == nil || res == nil {
		return
	}
	for _, p := range res.Matched {
		m.pairsMatched.Add(ctx, 1, metric.WithAttributes(attribute.String("via", string(p.Via))))
	}
	m.recordsUnmatched.Add(ctx, int64(len(res.OldOnly)),
		metric.WithAttributes(attribute.String("side", string(domain.SideOld))))
	m.recordsUnmatched.Add(ctx, int64(len(res.NewOnly)),
		metric.WithAttributes(attribute.String("side", string(domain.SideNew))))
}

// RecordDiff counts deltas by kind and the diff's warnings
func (m *ReconcileMetrics) RecordDiff(ctx context.Context, res *domain.DiffResult) {
	if m == nil || res == nil {
		return
	}
	for kind, n := range res.CountByKind() {
		m.deltas.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", string(kind))))
	}
	m.RecordWarnings(ctx, res.Warnings)
}

// RecordWarnings counts warnings by kind
func (m *ReconcileMetrics) RecordWarnings(ctx context.Context, warnings []domain.Warning) {
	if m == nil {
		return
	}
	for kind, n := range domain.CountWarnings(warnings) {
		m.warnings.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", string(kind))))
	}
}

// RecordStage records the duration and outcome of a pipeline stage
func (m *ReconcileMetrics) RecordStage(ctx context.Context, stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	))
}

// RecordRuntime samples heap usage at the end of a run
func (m *ReconcileMetrics) RecordRuntime(ctx context.Context) {
	if m == nil {
		return
	}
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryAllocated.Record(ctx, int64(memStats.TotalAlloc))
}
