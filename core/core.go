// Package core has core logic for collection, dataset building and reporting.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitcensus/core/agg"
	"github.com/huangsam/gitcensus/core/anon"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/metrics"
	"github.com/huangsam/gitcensus/internal/outwriter"
	"github.com/huangsam/gitcensus/internal/refdata"
	"github.com/huangsam/gitcensus/schema"
)

// ProviderFactory builds the commit provider selected by the configuration.
// It is only called when a collection run is needed.
type ProviderFactory func(cfg *contract.Config) (contract.CommitProvider, error)

// Env bundles the collaborators shared by every command.
type Env struct {
	Config      *contract.Config
	Stores      contract.StoreManager
	Tables      *refdata.Tables
	NewProvider ProviderFactory
	Metrics     *metrics.Recorder // nil disables metrics
}

// ExecuteCollect runs a collection, saves the snapshot and prints the summary.
// It serves as the main entry point for the 'collect' command.
func ExecuteCollect(ctx context.Context, env *Env) error {
	start := time.Now()
	summary, err := collectAndSave(ctx, env)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.PrintCollectionSummary(summary, env.Config, time.Since(start))
	}
	return writeMetrics(env)
}

// ExecuteReport builds every report and writes them in the configured format.
// It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, env *Env) error {
	start := time.Now()
	ctx = withFresh(ctx, env.Config.Fresh)

	bundle, ds, err := BuildBundle(ctx, env)
	if err != nil {
		return err
	}
	if env.Metrics != nil {
		env.Metrics.ReportTotals(bundle.TotalCommits, contributorsByType(ds, reportQuery(env.Config)))
	}
	if err := outwriter.WriteReport(bundle, env.Config, time.Since(start)); err != nil {
		return err
	}
	return writeMetrics(env)
}

// ExecuteUsers lists contributors without an internal/external label.
// With emitYAML set, a reference-data skeleton is printed instead of a table.
func ExecuteUsers(ctx context.Context, env *Env, emitYAML bool, defaultLabel schema.UserType) error {
	ds, err := LoadDataset(ctx, env)
	if err != nil {
		return err
	}
	unknown := UnknownContributors(ds, env.Tables.Classifier())
	if emitYAML {
		keys := make([]string, len(unknown))
		for i, u := range unknown {
			keys[i] = u.Key
		}
		return refdata.EmitContributorSkeleton(os.Stdout, keys, defaultLabel)
	}
	return outwriter.PrintUnknownContributors(unknown, env.Config)
}

// BuildBundle loads (or collects) the snapshot and computes the report bundle.
func BuildBundle(ctx context.Context, env *Env) (schema.ReportBundle, *agg.Dataset, error) {
	ds, err := LoadDataset(ctx, env)
	if err != nil {
		return schema.ReportBundle{}, nil, err
	}
	anonymizer, err := anon.New(env.Config.Anonymize)
	if err != nil {
		return schema.ReportBundle{}, nil, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(env.Config)
	}
	bundle, err := BuildReports(ds, env.Tables.Classifier(), anonymizer, ReportOptions{
		Range:             agg.Range{From: env.Config.StartTime, To: env.Config.EndTime},
		IntervalDays:      env.Config.IntervalDays,
		IncludeDuplicates: env.Config.IncludeDuplicates,
	})
	if err != nil {
		return schema.ReportBundle{}, nil, err
	}
	return bundle, ds, nil
}

// LoadDataset loads the snapshot, collecting first when needed, and classifies it.
func LoadDataset(ctx context.Context, env *Env) (*agg.Dataset, error) {
	snapshot, err := LoadSnapshot(ctx, env)
	if err != nil {
		return nil, err
	}
	return BuildDataset(snapshot, env.Tables.Normalizer(), env.Tables.Classifier()), nil
}

// LoadSnapshot returns the stored snapshot. A collection run replaces it when
// nothing is stored yet or when a fresh collection is requested.
func LoadSnapshot(ctx context.Context, env *Env) (schema.Snapshot, error) {
	if store := snapshotStore(env); store != nil && !shouldCollectFresh(ctx) {
		snapshot, err := store.Load(ctx)
		if err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			return snapshot, nil
		}
	}

	start := time.Now()
	snapshot, summary, err := collect(ctx, env)
	if err != nil {
		return nil, err
	}
	if err := saveSnapshot(ctx, env, snapshot); err != nil {
		return nil, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.PrintCollectionSummary(summary, env.Config, time.Since(start))
	}
	return snapshot, nil
}

func collectAndSave(ctx context.Context, env *Env) (schema.CollectionSummary, error) {
	snapshot, summary, err := collect(ctx, env)
	if err != nil {
		return summary, err
	}
	return summary, saveSnapshot(ctx, env, snapshot)
}

func collect(ctx context.Context, env *Env) (schema.Snapshot, schema.CollectionSummary, error) {
	cfg := env.Config
	if env.NewProvider == nil {
		return nil, schema.CollectionSummary{}, fmt.Errorf("%w: no commit provider configured", contract.ErrConfiguration)
	}
	provider, err := env.NewProvider(cfg)
	if err != nil {
		return nil, schema.CollectionSummary{}, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogCollectHeader(cfg)
	}

	var runs contract.RunStore
	if env.Stores != nil {
		runs = env.Stores.GetRunStore()
	}
	return Collect(ctx, provider, CollectOptions{
		Quiet:    cfg.Quiet,
		RunStore: runs,
		Metrics:  env.Metrics,
		ConfigParams: map[string]any{
			"provider":         string(cfg.Provider),
			"gitlab_url":       cfg.GitLabURL,
			"local_root":       cfg.LocalRoot,
			"snapshot_backend": string(cfg.SnapshotBackend),
		},
	})
}

func saveSnapshot(ctx context.Context, env *Env, snapshot schema.Snapshot) error {
	store := snapshotStore(env)
	if store == nil {
		return nil
	}
	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func snapshotStore(env *Env) contract.SnapshotStore {
	if env.Stores == nil {
		return nil
	}
	return env.Stores.GetSnapshotStore()
}

func reportQuery(cfg *contract.Config) agg.Query {
	return agg.Query{
		Range:             agg.Range{From: cfg.StartTime, To: cfg.EndTime},
		IncludeDuplicates: cfg.IncludeDuplicates,
	}
}

// contributorsByType counts contributors with qualifying commits per label.
func contributorsByType(ds *agg.Dataset, q agg.Query) map[string]int {
	seen := make(map[string]string)
	for _, c := range ds.Commits(q) {
		seen[c.CanonicalKey] = string(c.UserType)
	}
	out := make(map[string]int)
	for _, label := range seen {
		out[label]++
	}
	return out
}

func writeMetrics(env *Env) error {
	if env.Metrics == nil || env.Config.MetricsFile == "" {
		return nil
	}
	if err := env.Metrics.WriteTextfile(env.Config.MetricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote metrics to %s\n", env.Config.MetricsFile)
	return nil
}
