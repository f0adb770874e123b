package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		expected string
	}{
		{"map", map[string]int{"a": 1}, "{\n  \"a\": 1\n}\n"},
		{"slice", []string{"x"}, "[\n  \"x\"\n]\n"},
		{"nil", nil, "null\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeJSON(&buf, tt.data))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteJSONUnsupportedValue(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	assert.ErrorContains(t, err, "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"name", "note"}, [][]string{
		{"ben", "plain"},
		{"carol", "has, comma"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "note"}, {"ben", "plain"}, {"carol", "has, comma"}}, records)
}

func TestWriteWithFileCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeWithFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}, "Wrote test")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := outputPath(&contract.Config{OutputDir: dir}, "report.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.js"), path)
	assert.DirExists(t, dir)

	path, err = outputPath(&contract.Config{OutputDir: dir, OutputFile: "explicit.js"}, "report.js")
	require.NoError(t, err)
	assert.Equal(t, "explicit.js", path)
}

func TestGetMaxTableCellWidth(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		columns int
		want    int
	}{
		{"narrow terminal clamps to minimum", 40, 6, 12},
		{"wide terminal clamps to maximum", 400, 2, 60},
		{"in between", 120, 3, 36},
		{"zero columns treated as one", 50, 0, 46},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetMaxTableCellWidth(&contract.Config{Width: tt.width}, tt.columns))
		})
	}
}
