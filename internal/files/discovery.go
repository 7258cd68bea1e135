package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered export
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// exportExtensions are the file types an LMS or platform export can have
var exportExtensions = []string{".csv", ".xlsx"}

// Discovery locates gradebook exports under a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindExports walks dir and returns the exports whose file name matches
// pattern, newest first. A pattern with glob metacharacters is matched
// against the base name with filepath.Match; any other pattern must occur in
// the name. Names ending in one of excludeSuffixes are skipped so that the
// tool's own outputs are never picked up as inputs.
func (d *Discovery) FindExports(dir, pattern string, excludeSuffixes []string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	var files []FileInfo
	err := filepath.WalkDir(fullPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		name := entry.Name()
		if !isExport(name) || hasAnySuffix(name, excludeSuffixes) {
			return nil
		}
		ok, err := matchName(pattern, name)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", fullPath, err)
	}

	SortNewestFirst(files)
	return files, nil
}

// FindOutputs returns previously written reports ending in suffix, newest first.
func (d *Discovery) FindOutputs(dir, suffix string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	SortNewestFirst(files)
	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// SortNewestFirst orders files by modification time, newest first. Ties are
// broken by name so the order is stable across runs.
func SortNewestFirst(files []FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name > files[j].Name
	})
}

// Latest returns the n newest files. It fails when fewer than n exist.
func Latest(files []FileInfo, n int) ([]FileInfo, error) {
	if len(files) < n {
		return nil, fmt.Errorf("need %d exports, found %d", n, len(files))
	}
	sorted := make([]FileInfo, len(files))
	copy(sorted, files)
	SortNewestFirst(sorted)
	return sorted[:n], nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}

func matchName(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		return ok, nil
	}
	return strings.Contains(name, pattern), nil
}

func isExport(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exportExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
