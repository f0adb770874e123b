package cmd

import (
	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd builds every contribution report from the stored snapshot.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build contribution reports from the stored snapshot.",
	Long: `Resolve contributor identities, label them internal or external and report
commit counts by project, by user and over time.

The snapshot is collected first when none is stored or when --fresh is given.
Commits flagged as duplicates are excluded unless --include-duplicates is set.

Reports:
- total_commits, by_project, by_user, by_user_and_project
- by_user_by_project (stacked chart by project group)
- by_user_and_project_over_time and internal_external (interval buckets)
- all_commits (table and daily chart), date_range

Examples:
  # Text tables for the last six months
  gitcensus report --start "6 months ago"

  # Chart.js data for the dashboard, anonymized
  gitcensus report --output chartjs --output-dir web/ --anonymize

  # Standalone HTML charts
  gitcensus report --output html --output-file census.html

  # Commit rows for DuckDB or pandas
  gitcensus report --output parquet --output-file commits.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, env); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}
