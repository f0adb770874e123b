package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitcensus/core/dedup"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/metrics"
	"github.com/huangsam/gitcensus/schema"
	progress "gopkg.in/cheggaaa/pb.v1"
)

// CollectOptions configures one collection run.
type CollectOptions struct {
	Quiet        bool
	RunStore     contract.RunStore // nil disables run tracking
	Metrics      *metrics.Recorder // nil disables metrics
	ConfigParams map[string]any    // stored with the run record
}

// Collect lists every project from the provider and returns the flagged snapshot.
//
// Non-fork projects are scanned first and repeated commit ids are flagged as
// duplicates. Fork projects follow and drop commits already seen. A project whose
// commits cannot be listed is recorded as a failure and skipped. Only a failure to
// list projects aborts the run.
func Collect(ctx context.Context, provider contract.CommitProvider, opts CollectOptions) (schema.Snapshot, schema.CollectionSummary, error) {
	summary := schema.CollectionSummary{StartTime: time.Now()}

	projects, err := provider.ListProjects(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to list projects: %w", err)
	}
	summary.ProjectsReturned = len(projects)

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	if opts.RunStore != nil {
		runID, err = opts.RunStore.BeginRun(summary.StartTime, opts.ConfigParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
			runID = 0
		}
	}

	sources, forks := partitionProjects(projects)
	tracker := dedup.NewTracker()
	snapshot := make(schema.Snapshot, len(projects))
	bar := newProgressBar(ctx, len(projects), opts.Quiet)

	scan := func(project schema.Project, mode dedup.Mode) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if bar != nil {
			bar.Postfix(" " + project.Path)
			defer bar.Increment()
		}

		commits, err := provider.ListCommits(ctx, project)
		if err != nil {
			failure := schema.CollectionFailure{ProjectPath: project.Path, Reason: err.Error()}
			summary.Failures = append(summary.Failures, failure)
			if opts.RunStore != nil && runID > 0 {
				if recErr := opts.RunStore.RecordFailure(runID, failure); recErr != nil {
					contract.LogWarn("Failed to record collection failure", recErr)
				}
			}
			if opts.Metrics != nil {
				opts.Metrics.ProjectFailed()
			}
			return nil
		}

		skippedBefore, dupsBefore := tracker.Skipped(), tracker.Duplicates()
		flagged := tracker.Apply(commits, mode)
		snapshot[project.Path] = flagged

		summary.ProjectsScanned++
		if project.Fork {
			summary.ForksScanned++
		}
		if opts.Metrics != nil {
			dups := tracker.Duplicates() - dupsBefore
			opts.Metrics.ProjectScanned(project.Fork)
			opts.Metrics.CommitsKept(len(flagged)-dups, dups)
			opts.Metrics.ForkCommitsSkipped(tracker.Skipped() - skippedBefore)
		}
		return nil
	}

	// --- 1. Non-fork projects flag repeats ---
	for _, project := range sources {
		if err := scan(project, dedup.FlagDuplicates); err != nil {
			finishProgressBar(bar)
			return nil, summary, err
		}
	}

	// --- 2. Fork projects drop repeats ---
	for _, project := range forks {
		if err := scan(project, dedup.IgnoreDuplicates); err != nil {
			finishProgressBar(bar)
			return nil, summary, err
		}
	}
	finishProgressBar(bar)

	summary.CommitsKept = snapshot.CommitCount()
	summary.Duplicates = tracker.Duplicates()
	summary.ForkSkipped = tracker.Skipped()
	summary.EndTime = time.Now()

	if opts.Metrics != nil {
		opts.Metrics.ObserveCollect(summary.EndTime.Sub(summary.StartTime))
	}

	// --- 3. End Run Tracking ---
	if opts.RunStore != nil && runID > 0 {
		if err := opts.RunStore.EndRun(runID, summary.EndTime, summary); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return snapshot, summary, nil
}

// partitionProjects splits projects into non-forks and forks, keeping provider order.
func partitionProjects(projects []schema.Project) (sources, forks []schema.Project) {
	for _, p := range projects {
		if p.Fork {
			forks = append(forks, p)
		} else {
			sources = append(sources, p)
		}
	}
	return sources, forks
}

// newProgressBar returns a stderr progress bar, or nil when output is quiet.
func newProgressBar(ctx context.Context, total int, quiet bool) *progress.ProgressBar {
	if quiet || total == 0 || shouldSuppressHeader(ctx) {
		return nil
	}
	bar := progress.New(total)
	bar.Output = os.Stderr
	bar.ShowSpeed = false
	bar.ShowTimeLeft = true
	bar.SetMaxWidth(100)
	return bar.Start()
}

func finishProgressBar(bar *progress.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}
