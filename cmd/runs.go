package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/internal/iocache"
	"github.com/huangsam/gitcensus/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendFromConfig reads and validates the run tracking backend settings.
func runsBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return "", "", fmt.Errorf("%w: invalid runs backend '%s'", contract.ErrConfiguration, backend)
	}
	connStr := viper.GetString("runs-connect")
	if backend == schema.SQLiteBackend {
		connStr = contract.ExpandPath(connStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run tracking operations.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no snapshot store for runs commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsConnect = connStr
	cfg.OutputFile = contract.ExpandPath(viper.GetString("output-file"))
	return nil
}

// runsMigrateSetup loads configuration for migrate operations.
// It does NOT initialize stores or create tables, allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsConnect = connStr
	return nil
}

// runsCmd focused on collection run history.
//
// Note: Runs subcommands use minimal initialization instead of the full
// sharedSetup used by collect and report.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage collection run history and exports",
	Long: `Manage the history of collection runs.

When enabled, every collect run stores its start and end time, the settings used,
the collection summary and one record per project that failed to list.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs and failures to Parquet
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  gitcensus runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  gitcensus runs export --runs-backend sqlite --output-file runs`,
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the backend, number of runs, the latest run and table sizes.

Examples:
  gitcensus runs status --runs-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all collection run history",
	Long: `Delete all stored runs and per-project failure records.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gitcensus runs export --runs-backend sqlite --output-file backup
  gitcensus runs clear --runs-backend sqlite`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, cfg.RunsConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and failures to Parquet.

Writes <output-file>.runs.parquet and <output-file>.failures.parquet.

Requires: --output-file parameter

Examples:
  gitcensus runs export --runs-backend sqlite --output-file census
  duckdb -c "SELECT * FROM read_parquet('census.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gitcensus runs migrate --runs-backend postgresql --runs-connect "host=... dbname=..."

  # Rollback to initial state
  gitcensus runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
