package infrastructure

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradesync/internal/config"
	"gradesync/pkg/contracts/domain"
)

func TestInitializeOTelDisabledTracing(t *testing.T) {
	providers, err := InitializeOTel(nil, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	var spans bytes.Buffer
	cfg := OTelConfigFrom(config.ObservabilityConfig{Tracing: "stdout"})
	cfg.TraceWriter = &spans

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "parse")
	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)

	var logs bytes.Buffer
	NewLogger(&logs, "info", false).InfoContext(ctx, "in span")
	assert.Contains(t, logs.String(), `"trace_id":"`+traceID+`"`)
	RecordError(ctx, assert.AnError)
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))
	assert.Contains(t, spans.String(), `"Name": "parse"`)
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "zipkin"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestReconcileMetricsTextfile(t *testing.T) {
	providers, err := InitializeOTel(nil, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewReconcileMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	columns := []string{"Email", "Project 1"}
	snap := domain.NewSnapshot(domain.Source{Path: "new.csv", Side: domain.SideNew}, columns, []*domain.StudentRecord{
		domain.NewStudentRecord("a@x.edu", "a@x.edu", 2, columns, []string{"a@x.edu", "1"}),
	}, 1)
	m.RecordSnapshot(ctx, snap, []domain.Warning{
		{Kind: domain.WarnExcludedStatus},
		{Kind: domain.WarnInvalidNumber},
	})
	m.RecordMatch(ctx, &domain.MatchResult{Matched: []domain.MatchedPair{{Via: domain.MatchViaEmail}}})
	m.RecordDiff(ctx, &domain.DiffResult{Deltas: []domain.GradeDelta{{Kind: domain.DeltaNewGrade}}})
	m.RecordStage(ctx, "compare", 15*time.Millisecond, nil)
	m.RecordRuntime(ctx)

	path := filepath.Join(t.TempDir(), "gradesync.prom")
	require.NoError(t, providers.WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	for _, name := range []string{
		"gradesync_rows_parsed",
		"gradesync_rows_skipped",
		"gradesync_pairs_matched",
		"gradesync_grade_deltas",
		"gradesync_warnings",
		"gradesync_stage_duration_seconds",
	} {
		assert.Contains(t, text, name)
	}
	assert.Contains(t, text, `reason="excluded-status"`)
	assert.Contains(t, text, `kind="new-grade"`)
}

func TestNilReconcileMetrics(t *testing.T) {
	var m *ReconcileMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordSnapshot(ctx, nil, nil)
		m.RecordMatch(ctx, &domain.MatchResult{})
		m.RecordDiff(ctx, &domain.DiffResult{})
		m.RecordWarnings(ctx, nil)
		m.RecordStage(ctx, "x", time.Second, nil)
		m.RecordRuntime(ctx)
	})
}

func TestWriteMetricsWithoutPath(t *testing.T) {
	providers := &OTelProviders{}
	assert.NoError(t, providers.WriteMetrics(""))
}
