package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gradesync/internal/errors"
	"gradesync/pkg/contracts/domain"
)

const sampleYAML = `
logging:
  level: debug
  output: console
paths:
  data_dir: data
  reports_dir: reports
observability:
  tracing: stdout
  metrics_file: metrics/gradesync.prom
reconcile:
  lms_pattern: Canvas-COP4655
  platform_pattern: CodePath
  identity_columns:
    old_side: SIS Login ID
    new_side: Email
  header_anchor_strings: ["Full Name", "Email"]
  assignment_mapping:
    "Project 2: Weather (102)": "Project 2"
    "Project 1: Intro (101)": "Project 1"
    "Final Project: App (900)": "Final"
  bucket_labels:
    "Project 1: Intro (101)": "Warmup"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, IdentityColumns{OldSide: "SIS Login ID", NewSide: "Email"}, cfg.Reconcile.IdentityColumns)
	assert.Equal(t, "SIS Login ID", cfg.Reconcile.Mapping().IdentityColumn(domain.SideOld))
	assert.Equal(t, []string{"Withdrawn", "Dropped"}, cfg.Reconcile.ExcludedStatuses)
	assert.Equal(t, []string{"Points Possible"}, cfg.Reconcile.IgnoredIdentities)
	assert.Equal(t, "-updated.csv", cfg.Reconcile.OutputSuffixes.Updated)
	assert.Empty(t, cfg.Source())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Observability.Tracing)
	assert.Equal(t, "Canvas-COP4655", cfg.Reconcile.LMSPattern)
	assert.Equal(t, path, cfg.Source())

	t.Run("defaults survive partial files", func(t *testing.T) {
		assert.Equal(t, []string{"Status", "CodePath Certificate Status"}, cfg.Reconcile.StatusColumns)
		assert.Equal(t, "Student", cfg.Reconcile.NameColumns.OldSide)
		assert.Equal(t, "Name", cfg.Roster.CompletersIdentityColumn)
	})

	t.Run("mapping keeps declaration order", func(t *testing.T) {
		m := cfg.Reconcile.Mapping()
		assert.Equal(t, []string{
			"Project 2: Weather (102)",
			"Project 1: Intro (101)",
			"Final Project: App (900)",
		}, m.CanonicalNames())
		assert.Equal(t, []string{"Project 2", "Project 1", "Final"}, m.SourceNames())
		assert.Equal(t, "SIS Login ID", m.IdentityColumn(domain.SideOld))
		assert.Equal(t, "Email", m.IdentityColumn(domain.SideNew))
	})

	t.Run("bucket labels", func(t *testing.T) {
		m := cfg.Reconcile.Mapping()
		assert.Equal(t, "Warmup", m.BucketFor("Project 1: Intro (101)"))
		assert.Equal(t, "Project 2", m.BucketFor("Project 2: Weather (102)"))
		assert.Equal(t, "Final", m.BucketFor("Final Project: App (900)"))
	})

	t.Run("side anchors", func(t *testing.T) {
		m := cfg.Reconcile.Mapping()
		assert.Equal(t, []string{"Student", "SIS Login ID"}, m.AnchorsFor(domain.SideOld))
		assert.Equal(t, []string{"Full Name", "Email"}, m.AnchorsFor(domain.SideNew))
	})

	t.Run("paths resolve against the file", func(t *testing.T) {
		p := cfg.GetPaths()
		dir := filepath.Dir(path)
		assert.Equal(t, filepath.Join(dir, "data"), p.DataDir)
		assert.Equal(t, filepath.Join(dir, "reports"), p.ReportsDir)
	})
}

func TestLoadFileFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantKey string
		missing bool
	}{
		{
			name: "blank identity column",
			yaml: `
reconcile:
  identity_columns:
    old_side: ""
`,
			wantKey: "reconcile.identity_columns.old_side",
			missing: true,
		},
		{
			name: "unknown log level",
			yaml: `
logging:
  level: verbose
`,
			wantKey: "logging.level",
		},
		{
			name: "unknown tracing mode",
			yaml: `
observability:
  tracing: jaeger
`,
			wantKey: "observability.tracing",
		},
		{
			name: "assignment without platform column",
			yaml: `
reconcile:
  assignment_mapping:
    "Project 1: Intro (101)": ""
`,
			wantKey: "reconcile.assignment_mapping[Project 1: Intro (101)]",
			missing: true,
		},
		{
			name: "file logging without a path",
			yaml: `
logging:
  output: file
  file_path: ""
`,
			wantKey: "logging.file_path",
			missing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
			assert.Equal(t, tt.missing, apperrors.Is(err, apperrors.ErrMissingConfigKey))
		})
	}

	t.Run("unreadable file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "logging: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GRADESYNC_LOGGING_LEVEL", "warn")
	t.Setenv("GRADESYNC_RECONCILE_EXCLUDED_STATUSES", "Withdrawn,Dropped,Incomplete")
	t.Setenv("GRADESYNC_RECONCILE_IDENTITY_COLUMNS_NEW_SIDE", "Student Email")

	cfg, err := LoadFile(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level, "environment wins over the file")
	assert.Equal(t, []string{"Withdrawn", "Dropped", "Incomplete"}, cfg.Reconcile.ExcludedStatuses)
	assert.Equal(t, "Student Email", cfg.Reconcile.Mapping().IdentityColumn(domain.SideNew))
	assert.Equal(t, "Canvas-COP4655", cfg.Reconcile.LMSPattern, "unset variables keep file values")
}

func TestRequireAssignments(t *testing.T) {
	cfg := Default()
	err := cfg.Reconcile.RequireAssignments()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile.assignment_mapping")

	loaded, err := LoadFile(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.NoError(t, loaded.Reconcile.RequireAssignments())
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		name   string
		paths  Paths
		input  string
		suffix string
		want   string
	}{
		{
			name:   "next to the input",
			paths:  Paths{DataDir: "/srv/data"},
			input:  "/srv/data/2024-10-01T0900_Canvas-COP4655.csv",
			suffix: "-updated.csv",
			want:   "/srv/data/2024-10-01T0900_Canvas-COP4655-updated.csv",
		},
		{
			name:   "reports directory",
			paths:  Paths{DataDir: "/srv/data", ReportsDir: "/srv/reports"},
			input:  "/srv/data/sub/2024-10-01_CodePath.xlsx",
			suffix: "-not-submitted.csv",
			want:   "/srv/reports/2024-10-01_CodePath-not-submitted.csv",
		},
		{
			name:   "changes text file",
			paths:  Paths{},
			input:  "/srv/data/new.csv",
			suffix: ".out",
			want:   "/srv/data/new.out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.paths.ReportPath(tt.input, tt.suffix))
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	p := &Paths{LogsDir: filepath.Join(root, "logs"), ReportsDir: filepath.Join(root, "out", "reports")}
	require.NoError(t, p.EnsureDirectories())
	assert.DirExists(t, p.LogsDir)
	assert.DirExists(t, p.ReportsDir)
	assert.True(t, FileExists(p.LogsDir))
	assert.False(t, FileExists(filepath.Join(root, "nope")))
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "gradesync.example.yaml"))
	require.NoError(t, err)

	m := cfg.Reconcile.Mapping()
	assert.Equal(t, []string{"Project 1", "Project 2", "Project 3", "Final Project"}, m.SourceNames())
	assert.Equal(t, "Final", m.BucketFor("Final Project"))
	assert.Equal(t, []string{"Student", "SIS Login ID"}, m.AnchorsFor(domain.SideOld))
	assert.Equal(t, "Unposted Current Grade", cfg.Roster.GradeColumn)
	assert.Equal(t, LetterGradeOrder, cfg.Roster.GradeOrder)
}
