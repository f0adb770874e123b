//go:build integration

// Package integration contains integration tests for gitcensus.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportMatchesFixture collects local repositories and checks the JSON report
// against the commits created on disk.
func TestReportMatchesFixture(t *testing.T) {
	root := fixtureRoot(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot.json")
	out := filepath.Join(t.TempDir(), "report.json")

	args := append(baseArgs(root), "--snapshot-connect", snapshot)
	_, err := runCommand(t, append([]string{"collect"}, args...)...)
	require.NoError(t, err)
	assert.FileExists(t, snapshot)

	_, err = runCommand(t, append([]string{"report", "--output", "json", "--output-file", out}, args...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var bundle struct {
		TotalCommits int `json:"total_commits"`
		Tables       map[string]struct {
			Rows [][]string `json:"rows"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(data, &bundle))

	assert.Equal(t, 3, bundle.TotalCommits)
	assert.ElementsMatch(t, [][]string{
		{"ben", "2", "internal"},
		{"visitor", "1", "unknown"},
	}, bundle.Tables["by_user"].Rows)
}

// TestResolveAndClassify checks the lookup commands that only need reference data.
func TestResolveAndClassify(t *testing.T) {
	out, err := runCommand(t, "resolve", "--committer-email", "jianmin@corp.example", "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, out, "Key: ben")
	assert.Contains(t, out, "User Type: internal")

	out, err = runCommand(t, "classify", "Module1/lab1", "studentA/play")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Module1/lab1\tExample Course\tschoolhouse", lines[0])
	assert.Equal(t, "studentA/play\tstudentA\tpersonal", lines[1])
}

// TestUsersEmitYAML checks the reference data skeleton for unlabeled contributors.
func TestUsersEmitYAML(t *testing.T) {
	root := fixtureRoot(t)
	args := append(baseArgs(root), "--snapshot-backend", "none")
	out, err := runCommand(t, append([]string{"users", "--emit-yaml"}, args...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "internal_external:")
	assert.Contains(t, out, "visitor: external")
	assert.NotContains(t, out, "ben:")
}
