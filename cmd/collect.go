package cmd

import (
	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/spf13/cobra"
)

// collectCmd lists every project and stores the flagged commit snapshot.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect commit history from every project into the snapshot.",
	Long: `List every visible project, gather its full commit history and store the result
as a snapshot keyed by project path.

Source projects are scanned before forks. A commit already seen in a source project
is kept and flagged as a duplicate; a fork commit already seen anywhere is skipped.
Projects that fail to list are reported at the end and never stop the run.

Examples:
  # Collect from gitlab.com using the token in GITLAB_API
  gitcensus collect

  # Collect from a self-hosted instance into SQLite
  gitcensus collect --gitlab-url https://git.example.com/ --snapshot-backend sqlite

  # Collect from local clones and track the run
  gitcensus collect --provider local --local-root ~/src --runs-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCollect(rootCtx, env); err != nil {
			contract.LogFatal("Cannot collect commits", err)
		}
	},
}
