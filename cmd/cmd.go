// Package cmd defines the command-line interface for gitcensus.
package cmd

import (
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("provider", string(schema.GitLabProvider), "Commit source: gitlab or local")
	rootCmd.PersistentFlags().String("gitlab-url", contract.DefaultGitLabURL, "GitLab instance URL")
	rootCmd.PersistentFlags().String("gitlab-token", "", "GitLab personal access token (prefer the GITLAB_API env variable)")
	rootCmd.PersistentFlags().String("local-root", "", "Directory whose subdirectories are Git repositories (local provider)")
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601 or time ago (exclusive)")
	rootCmd.PersistentFlags().Int("interval", contract.DefaultIntervalDays, "Bucket width in days for time-based reports")
	rootCmd.PersistentFlags().Bool("anonymize", false, "Replace contributor names and personal project paths with salted digests")
	rootCmd.PersistentFlags().Bool("include-duplicates", false, "Count commits flagged as duplicates")
	rootCmd.PersistentFlags().String("reference-data", "", "YAML file with aliases, labels and namespace courses")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or chartjs or html or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("output-dir", ".", "Directory for multi-file outputs (csv, chartjs)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress and headers")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.FileBackend), "Snapshot backend: file or sqlite or mysql or postgresql or mongodb or redis or none")
	rootCmd.PersistentFlags().String("snapshot-connect", "", "Snapshot file path or database connection string")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-connect", "", "Database connection string for run tracking")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().Bool("fresh", false, "Collect a new snapshot before reporting")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of usersCmd to Viper
	usersCmd.Flags().Bool("emit-yaml", false, "Print an internal_external YAML skeleton instead of a table")
	usersCmd.Flags().String("default-label", string(schema.ExternalUser), "Label used in the YAML skeleton: internal or external")
	if err := viper.BindPFlags(usersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding users flags", err)
	}

	// Bind all flags of resolveCmd to Viper
	resolveCmd.Flags().String("committer-email", "", "Committer email of the commit")
	resolveCmd.Flags().String("author-email", "", "Author email of the commit")
	resolveCmd.Flags().String("committer-name", "", "Committer name of the commit")
	resolveCmd.Flags().String("author-name", "", "Author name of the commit")
	resolveCmd.Flags().String("project-path", "", "Project path, used when every identity field is anonymous")
	if err := viper.BindPFlags(resolveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding resolve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
