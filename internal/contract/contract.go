// Package contract provides interfaces and shared utilities for the gitcensus internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/gitcensus/schema"
)

// ErrConfiguration marks a missing or invalid credential, a malformed stored
// snapshot, or invalid settings. It is fatal before any core processing begins.
var ErrConfiguration = errors.New("configuration error")

// CommitProvider lists projects and their commits from a source-control service.
// This allows collection to be tested without network access.
type CommitProvider interface {
	// ListProjects returns every visible project. Failure aborts the run.
	ListProjects(ctx context.Context) ([]schema.Project, error)

	// ListCommits returns the full commit listing of one project.
	// Failure is recorded for that project and the run continues.
	ListCommits(ctx context.Context, project schema.Project) ([]schema.RawCommit, error)
}

// StoreManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetRunStore() RunStore
}

// SnapshotStore persists the collected snapshot keyed by project path.
type SnapshotStore interface {
	// Load returns the stored snapshot, or an empty one when nothing is stored.
	Load(ctx context.Context) (schema.Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot schema.Snapshot) error

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.SnapshotStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RunStore tracks collection runs and their per-project failures.
type RunStore interface {
	// BeginRun creates a new run record and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.CollectionSummary) error

	// RecordFailure stores one project collection failure for a run
	RecordFailure(runID int64, failure schema.CollectionFailure) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every run ordered by run ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFailures returns every recorded failure ordered by run ID
	GetAllFailures() ([]schema.RunFailureRecord, error)

	// Close closes the underlying connection
	Close() error
}
