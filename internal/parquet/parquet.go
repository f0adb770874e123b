// Package parquet provides data structures and functions for exporting gitcensus
// commits and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitcensus/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single collection run with its summary counters.
// This struct maps to the gitcensus_runs database table.
type Run struct {
	// RunID is the unique identifier for this collection run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the collection began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the collection completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	ProjectsScanned int32 `parquet:"projects_scanned,snappy"`
	CommitsKept     int32 `parquet:"commits_kept,snappy"`
	Duplicates      int32 `parquet:"duplicates,snappy"`
	ForkSkipped     int32 `parquet:"fork_skipped,snappy"`
	FailureCount    int32 `parquet:"failure_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Failure is a project whose commits could not be listed during a run.
// This struct maps to the gitcensus_run_failures database table.
type Failure struct {
	RunID       int64     `parquet:"run_id,snappy"`
	ProjectPath string    `parquet:"project_path,snappy"`
	Reason      string    `parquet:"reason,snappy"`
	RecordedAt  time.Time `parquet:"recorded_at,snappy"`
}

// Commit is one classified commit as it appears in reports.
type Commit struct {
	Name          string    `parquet:"name,dict,snappy"`
	UserType      string    `parquet:"user_type,dict,snappy"`
	Project       string    `parquet:"project,dict,snappy"`
	ProjectGroup  string    `parquet:"project_group,dict,snappy"`
	ProjectType   string    `parquet:"project_type,dict,snappy"`
	CommitID      string    `parquet:"commit_id,snappy"`
	CommittedDate time.Time `parquet:"committed_date,snappy"`
	Duplicate     bool      `parquet:"duplicate,snappy"`
}

// writeParquet writes rows to outputPath using a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFailuresParquet writes a slice of Failure structs to a Parquet file.
func WriteFailuresParquet(data []Failure, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCommitsParquet writes a slice of Commit structs to a Parquet file.
func WriteCommitsParquet(data []Commit, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:           record.RunID,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			ProjectsScanned: record.ProjectsScanned,
			CommitsKept:     record.CommitsKept,
			Duplicates:      record.Duplicates,
			ForkSkipped:     record.ForkSkipped,
			FailureCount:    record.FailureCount,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertFailureRecords converts schema.RunFailureRecord to Failure for Parquet export.
func ConvertFailureRecords(records []schema.RunFailureRecord) []Failure {
	result := make([]Failure, len(records))
	for i, record := range records {
		result[i] = Failure{
			RunID:       record.RunID,
			ProjectPath: record.ProjectPath,
			Reason:      record.Reason,
			RecordedAt:  record.RecordedAt,
		}
	}
	return result
}

// ConvertCommitEntries converts report commit entries to Commit for Parquet export.
func ConvertCommitEntries(entries []schema.CommitEntry) []Commit {
	result := make([]Commit, len(entries))
	for i, e := range entries {
		result[i] = Commit{
			Name:          e.Name,
			UserType:      string(e.UserType),
			Project:       e.Project,
			ProjectGroup:  e.ProjectGroup,
			ProjectType:   string(e.ProjectType),
			CommitID:      e.CommitID,
			CommittedDate: e.CommittedDate,
			Duplicate:     e.Duplicate,
		}
	}
	return result
}
