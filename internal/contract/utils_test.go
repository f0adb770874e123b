package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name     string
		userType schema.UserType
	}{
		{"internal", schema.InternalUser},
		{"external", schema.ExternalUser},
		{"unknown", schema.UnknownUser},
		{"empty falls back", schema.UserType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should contain the plain label
			assert.Contains(t, GetColorLabel(tt.userType), string(tt.userType))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, path, f.Name())
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "relative", ExpandPath("relative"))

	expanded := ExpandPath("~/data.yaml")
	assert.False(t, strings.HasPrefix(expanded, "~"))
	assert.True(t, strings.HasSuffix(expanded, "data.yaml"))
}

func TestDefaultDBPathsDiffer(t *testing.T) {
	assert.NotEqual(t, GetSnapshotDBFilePath(), GetRunsDBFilePath())
	assert.Contains(t, GetSnapshotDBFilePath(), ".gitcensus_snapshot.db")
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path untouched", "a/b", 10, "a/b"},
		{"long path truncated", "Module1/very-long-project", 10, "...project"},
		{"tiny width untouched", "Module1/x", 3, "Module1/x"},
		{"unicode safe", "grp/ñandú-ñandú", 8, "...ñandú"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
