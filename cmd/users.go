package cmd

import (
	"github.com/huangsam/gitcensus/core"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// usersCmd lists contributors that the reference data does not label yet.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List contributors without an internal or external label.",
	Long: `Show every canonical contributor that has commits in the snapshot but no entry
in the internal_external table, with commit counts and the raw identities seen.

Use --emit-yaml to print a skeleton that can be pasted into the reference data file
after reviewing each label.

Examples:
  # Table of unlabeled contributors
  gitcensus users

  # Skeleton with every contributor marked internal
  gitcensus users --emit-yaml --default-label internal >> refdata.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		label := schema.UserType(viper.GetString("default-label"))
		if err := core.ExecuteUsers(rootCtx, env, viper.GetBool("emit-yaml"), label); err != nil {
			contract.LogFatal("Cannot list contributors", err)
		}
	},
}
