package outwriter

import (
	"fmt"
	"strings"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// sourceName describes where commits are collected from.
func sourceName(cfg *contract.Config) string {
	switch cfg.Provider {
	case schema.LocalProvider:
		return fmt.Sprintf("local (%s)", cfg.LocalRoot)
	default:
		return fmt.Sprintf("gitlab (%s)", strings.TrimSuffix(cfg.GitLabURL, "/"))
	}
}

// LogCollectHeader prints a header for a collection run.
func LogCollectHeader(cfg *contract.Config) {
	if cfg.Quiet {
		return
	}
	fmt.Printf("🔎 Collecting: %s (snapshot: %s)\n", sourceName(cfg), cfg.SnapshotBackend)
}

// LogReportHeader prints a header for report building.
func LogReportHeader(cfg *contract.Config) {
	if cfg.Quiet {
		return
	}
	dups := "excluded"
	if cfg.IncludeDuplicates {
		dups = "included"
	}
	fmt.Printf("📅 Range: %s → %s (interval: %dd, duplicates %s)\n",
		cfg.StartTime.Format(contract.DateTimeFormat), cfg.EndTime.Format(contract.DateTimeFormat),
		cfg.IntervalDays, dups)
}
