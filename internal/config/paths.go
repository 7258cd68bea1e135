package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved application paths
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string // empty: reports are written next to their input
	LogsDir    string
	LogFile    string
	// MetricsFile is empty when no metrics textfile is configured
	MetricsFile string
}

// GetPaths resolves the configured directories against BaseDir.
func (c *Config) GetPaths() *Paths {
	base := c.BaseDir()
	p := &Paths{
		BaseDir: base,
		DataDir: resolve(base, c.Paths.DataDir),
		LogsDir: resolve(base, c.Paths.LogsDir),
		LogFile: resolve(base, c.Logging.FilePath),

		MetricsFile: resolve(base, c.Observability.MetricsFile),
	}
	if c.Paths.ReportsDir != "" {
		p.ReportsDir = resolve(base, c.Paths.ReportsDir)
	}
	return p
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the report and log directories if they don't exist.
// The data directory is input-only and must already exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.LogsDir}
	if p.ReportsDir != "" {
		directories = append(directories, p.ReportsDir)
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// ReportPath derives an output path from an input export: the input's base
// name without extension plus suffix, in ReportsDir or next to the input.
//
//	ReportPath("data/2024-10-01_Canvas.csv", "-updated.csv") -> "data/2024-10-01_Canvas-updated.csv"
func (p *Paths) ReportPath(input, suffix string) string {
	dir := filepath.Dir(input)
	if p.ReportsDir != "" {
		dir = p.ReportsDir
	}
	name := filepath.Base(input)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(dir, name+suffix)
}

// GetReportPath returns the path for a report file with a fixed name
func (p *Paths) GetReportPath(filename string) string {
	if p.ReportsDir != "" {
		return filepath.Join(p.ReportsDir, filename)
	}
	return filepath.Join(p.DataDir, filename)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.String("log_file", p.LogFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
