package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradesync/internal/config"
	"gradesync/internal/files"
)

func TestWriteCSV(t *testing.T) {
	table := Table{
		Headers: []string{"Student", "Missing Assignments"},
		Records: [][]string{
			{"Alice", "Project 1, Project 2"},
			{"Bob", `Lab "A"`},
		},
	}

	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name:     "plain",
			options:  WriteOptions{},
			expected: "Student,Missing Assignments\nAlice,\"Project 1, Project 2\"\nBob,\"Lab \"\"A\"\"\"\n",
		},
		{
			name:     "with BOM",
			options:  WriteOptions{BOMPrefix: true},
			expected: "\ufeffStudent,Missing Assignments\nAlice,\"Project 1, Project 2\"\nBob,\"Lab \"\"A\"\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, table, tt.options))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Table{Headers: []string{"Email"}}, WriteOptions{}))
	assert.Equal(t, "Email\n", buf.String())
}

func TestCSVWriterWritesThroughManager(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(files.NewManager(&config.Paths{DataDir: dir}, nil), nil)

	t.Run("simple CSV carries a BOM", func(t *testing.T) {
		require.NoError(t, writer.WriteSimpleCSV("summary.csv",
			[]string{"Project", "Submitted"},
			[][]string{{"Project 1", "2"}}))

		data, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, utf8BOM))
		assert.Equal(t, "Project,Submitted\nProject 1,2\n", string(data[len(utf8BOM):]))
	})

	t.Run("import file without BOM replaces previous content", func(t *testing.T) {
		path := filepath.Join(dir, "out", "updated.csv")
		require.NoError(t, writer.WriteCSV(path, Table{Headers: []string{"A"}, Records: [][]string{{"1"}, {"2"}}}, WriteOptions{}))
		require.NoError(t, writer.WriteCSV(path, Table{Headers: []string{"A"}, Records: [][]string{{"3"}}}, WriteOptions{}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A\n3\n", string(data))
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "66.7%", formatPercent(200.0/3))
	assert.Equal(t, "0.0%", formatPercent(0))
	assert.Equal(t, "100.0%", formatPercent(100))
	assert.Equal(t, "", formatRow(0))
	assert.Equal(t, "12", formatRow(12))
	assert.Equal(t, "Yes", formatYesNo(true))
	assert.Equal(t, "No", formatYesNo(false))
	assert.Equal(t, "00000000000000ff", formatFingerprint(255))
}
