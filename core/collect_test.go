package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/gitcensus/internal/iocache"
	"github.com/huangsam/gitcensus/internal/metrics"
	"github.com/huangsam/gitcensus/internal/provider"
	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rawCommits(project string, ids ...string) []schema.RawCommit {
	out := make([]schema.RawCommit, len(ids))
	for i, id := range ids {
		out[i] = schema.RawCommit{
			ID:             id,
			ProjectPath:    project,
			CommitterEmail: "dev@example.com",
			CommittedDate:  time.Date(2020, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func quietCtx() context.Context {
	return WithSuppressHeader(context.Background())
}

func ids(commits []schema.FlaggedCommit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.ID
	}
	return out
}

func counterValue(t *testing.T, rec *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCollectForksScannedAfterSources(t *testing.T) {
	ctx := quietCtx()
	fork := schema.Project{Path: "Module1/x-fork", Fork: true}
	source := schema.Project{Path: "Module1/x"}

	p := &provider.MockProvider{}
	// The fork is listed first but must be scanned last.
	p.On("ListProjects", ctx).Return([]schema.Project{fork, source}, nil)
	p.On("ListCommits", ctx, source).Return(rawCommits(source.Path, "a", "b"), nil)
	p.On("ListCommits", ctx, fork).Return(rawCommits(fork.Path, "a", "b", "c"), nil)

	snap, summary, err := Collect(ctx, p, CollectOptions{Quiet: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(snap[source.Path]))
	assert.Equal(t, []string{"c"}, ids(snap[fork.Path]))
	assert.Equal(t, 2, summary.ProjectsScanned)
	assert.Equal(t, 1, summary.ForksScanned)
	assert.Equal(t, 3, summary.CommitsKept)
	assert.Equal(t, 2, summary.ForkSkipped)
	assert.Equal(t, 0, summary.Duplicates)
	p.AssertExpectations(t)
}

func TestCollectFlagsDuplicatesAcrossSources(t *testing.T) {
	ctx := quietCtx()
	one := schema.Project{Path: "grp/one"}
	two := schema.Project{Path: "grp/two"}

	p := &provider.MockProvider{}
	p.On("ListProjects", ctx).Return([]schema.Project{one, two}, nil)
	p.On("ListCommits", ctx, one).Return(rawCommits(one.Path, "1", "2"), nil)
	p.On("ListCommits", ctx, two).Return(rawCommits(two.Path, "2", "3"), nil)

	snap, summary, err := Collect(ctx, p, CollectOptions{Quiet: true})
	require.NoError(t, err)

	require.Len(t, snap[two.Path], 2)
	assert.True(t, snap[two.Path][0].Duplicate)
	assert.False(t, snap[two.Path][1].Duplicate)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 4, summary.CommitsKept)
}

func TestCollectProjectFailureIsRecorded(t *testing.T) {
	ctx := quietCtx()
	good := schema.Project{Path: "grp/good"}
	bad := schema.Project{Path: "grp/bad"}
	empty := schema.Project{Path: "grp/empty"}

	p := &provider.MockProvider{}
	p.On("ListProjects", ctx).Return([]schema.Project{bad, good, empty}, nil)
	p.On("ListCommits", ctx, bad).Return(nil, errors.New("403 forbidden"))
	p.On("ListCommits", ctx, good).Return(rawCommits(good.Path, "g1"), nil)
	p.On("ListCommits", ctx, empty).Return([]schema.RawCommit{}, nil)

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything).Return(int64(7), nil)
	runs.On("RecordFailure", int64(7), schema.CollectionFailure{ProjectPath: "grp/bad", Reason: "403 forbidden"}).Return(nil)
	runs.On("EndRun", int64(7), mock.Anything, mock.MatchedBy(func(s schema.CollectionSummary) bool {
		return len(s.Failures) == 1 && s.ProjectsScanned == 2
	})).Return(nil)

	rec := metrics.NewRecorder(false)
	snap, summary, err := Collect(ctx, p, CollectOptions{Quiet: true, RunStore: runs, Metrics: rec})
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "grp/bad", summary.Failures[0].ProjectPath)
	assert.NotContains(t, snap, "grp/bad")
	assert.Contains(t, snap, "grp/empty", "a successful empty listing still gets an entry")
	assert.Empty(t, snap["grp/empty"])
	assert.Equal(t, 3, summary.ProjectsReturned)
	assert.False(t, summary.EndTime.Before(summary.StartTime))

	assert.Equal(t, 1.0, counterValue(t, rec, "gitcensus_project_failures_total"))
	runs.AssertExpectations(t)
}

func TestCollectListProjectsFailureIsFatal(t *testing.T) {
	ctx := quietCtx()
	p := &provider.MockProvider{}
	p.On("ListProjects", ctx).Return(nil, errors.New("401 unauthorized"))

	runs := &iocache.MockRunStore{}
	_, _, err := Collect(ctx, p, CollectOptions{Quiet: true, RunStore: runs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list projects")
	runs.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything)
}

func TestCollectRunTrackingErrorsAreNotFatal(t *testing.T) {
	ctx := quietCtx()
	project := schema.Project{Path: "grp/p"}
	p := &provider.MockProvider{}
	p.On("ListProjects", ctx).Return([]schema.Project{project}, nil)
	p.On("ListCommits", ctx, project).Return(rawCommits(project.Path, "x"), nil)

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	snap, _, err := Collect(ctx, p, CollectOptions{Quiet: true, RunStore: runs})
	require.NoError(t, err)
	assert.Len(t, snap[project.Path], 1)
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(quietCtx())
	project := schema.Project{Path: "grp/p"}
	p := &provider.MockProvider{}
	p.On("ListProjects", ctx).Return([]schema.Project{project}, nil).Run(func(mock.Arguments) { cancel() })

	_, _, err := Collect(ctx, p, CollectOptions{Quiet: true})
	assert.ErrorIs(t, err, context.Canceled)
	p.AssertNotCalled(t, "ListCommits", mock.Anything, mock.Anything)
}

func TestPartitionProjectsKeepsOrder(t *testing.T) {
	projects := []schema.Project{
		{Path: "f1", Fork: true}, {Path: "s1"}, {Path: "f2", Fork: true}, {Path: "s2"},
	}
	sources, forks := partitionProjects(projects)
	assert.Equal(t, []schema.Project{{Path: "s1"}, {Path: "s2"}}, sources)
	assert.Equal(t, []schema.Project{{Path: "f1", Fork: true}, {Path: "f2", Fork: true}}, forks)
}
