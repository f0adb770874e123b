package schema

import "time"

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	Location      string    `json:"location,omitempty"`
	TotalProjects int       `json:"total_projects"`
	TotalCommits  int       `json:"total_commits"`
	Duplicates    int       `json:"duplicates"`
	LastCollected time.Time `json:"last_collected"`
	StorageBytes  int64     `json:"storage_bytes"`
}

// RunStatus represents the status of the run tracking store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalCommits  int              `json:"total_commits"`
	TotalFailures int              `json:"total_failures"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the gitcensus_runs table.
type RunRecord struct {
	RunID           int64
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	ProjectsScanned int32
	CommitsKept     int32
	Duplicates      int32
	ForkSkipped     int32
	FailureCount    int32
	ConfigParams    *string
}

// RunFailureRecord represents a row from the gitcensus_run_failures table.
type RunFailureRecord struct {
	RunID       int64
	ProjectPath string
	Reason      string
	RecordedAt  time.Time
}
