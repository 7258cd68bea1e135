package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gradesync/internal/config"
	apperrors "gradesync/internal/errors"
)

// Manager writes report files under the configured directories
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// Paths returns the resolved application paths
func (m *Manager) Paths() *config.Paths {
	return m.paths
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// WriteFile writes a report through fn. The content goes to a temporary file
// in the target directory that is renamed into place once fn succeeds, so a
// failed run never leaves a truncated report behind.
func (m *Manager) WriteFile(path string, fn func(w io.Writer) error) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return apperrors.NewStorageError("failed to create report file", err).WithContext("path", fullPath)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close report file", err).WithContext("path", fullPath)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return apperrors.NewStorageError("failed to move report into place", err).WithContext("path", fullPath)
	}

	m.logger.Debug("Report written", slog.String("path", fullPath))
	return nil
}

// AppendFile appends to a text report, creating it when missing.
func (m *Manager) AppendFile(path string, fn func(w io.Writer) error) error {
	fullPath := m.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", fullPath)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return apperrors.NewStorageError("failed to open report file", err).WithContext("path", fullPath)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", fullPath, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("failed to close report file", err).WithContext("path", fullPath)
	}
	return nil
}

// resolvePath resolves a relative path against the data directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil || m.paths.DataDir == "" {
		return path
	}
	return filepath.Join(m.paths.DataDir, path)
}
