package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitcensus/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRunStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(Run))
	for _, col := range []string{
		"run_id", "start_time", "end_time", "run_duration_ms", "projects_scanned",
		"commits_kept", "duplicates", "fork_skipped", "failure_count", "config_params",
	} {
		_, ok := sch.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestCommitStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(Commit))
	for _, col := range []string{
		"name", "user_type", "project", "project_group", "project_type",
		"commit_id", "committed_date", "duplicate",
	} {
		_, ok := sch.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	duration := int32(90000)
	params := `{"provider":"gitlab"}`

	records := []schema.RunRecord{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, ProjectsScanned: 4, CommitsKept: 120, Duplicates: 3, ForkSkipped: 7, FailureCount: 1, ConfigParams: &params},
		{RunID: 2, StartTime: start.Add(time.Hour)},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), path))

	got := readAll[Run](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(120), got[0].CommitsKept)
	assert.Equal(t, int32(7), got[0].ForkSkipped)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteFailuresParquet(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []schema.RunFailureRecord{
		{RunID: 1, ProjectPath: "grp/broken", Reason: "403 Forbidden", RecordedAt: at},
	}

	path := filepath.Join(t.TempDir(), "failures.parquet")
	require.NoError(t, WriteFailuresParquet(ConvertFailureRecords(records), path))

	got := readAll[Failure](t, path)
	require.Len(t, got, 1)
	assert.Equal(t, "grp/broken", got[0].ProjectPath)
	assert.Equal(t, "403 Forbidden", got[0].Reason)
}

func TestWriteCommitsParquet(t *testing.T) {
	when := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	entries := []schema.CommitEntry{
		{Name: "alice", UserType: schema.InternalUser, Project: "Module1/x", ProjectGroup: "Example Course", ProjectType: schema.SchoolhouseProject, CommitID: "abc", CommittedDate: when},
		{Name: "bob", UserType: schema.UnknownUser, Project: "bob/tools", ProjectGroup: "bob", ProjectType: schema.PersonalProject, CommitID: "def", CommittedDate: when, Duplicate: true},
	}

	path := filepath.Join(t.TempDir(), "commits.parquet")
	require.NoError(t, WriteCommitsParquet(ConvertCommitEntries(entries), path))

	got := readAll[Commit](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name)
	assert.Equal(t, "internal", got[0].UserType)
	assert.Equal(t, "schoolhouse", got[0].ProjectType)
	assert.True(t, got[1].Duplicate)
	assert.WithinDuration(t, when, got[1].CommittedDate, time.Nanosecond)
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WriteCommitsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
