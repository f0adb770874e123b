// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the report bundle using the configured output format.
func (ow *OutWriter) WriteReport(bundle schema.ReportBundle, cfg *contract.Config, duration time.Duration) error {
	return WriteReport(bundle, cfg, duration)
}

// WriteUnknownContributors prints unlabeled contributors using the configured output format.
func (ow *OutWriter) WriteUnknownContributors(rows []schema.UnknownContributor, cfg *contract.Config) error {
	return PrintUnknownContributors(rows, cfg)
}

// WriteCollectionSummary prints the outcome of a collection run.
func (ow *OutWriter) WriteCollectionSummary(summary schema.CollectionSummary, cfg *contract.Config, duration time.Duration) {
	PrintCollectionSummary(summary, cfg, duration)
}
