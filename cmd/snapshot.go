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

// snapshotSetup loads minimal configuration needed for snapshot operations.
// This is used by commands that need snapshot access without full shared setup.
func snapshotSetup(open bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("snapshot-backend")))
	if backend == "" {
		backend = schema.FileBackend
	}
	if _, ok := schema.ValidSnapshotBackends[backend]; !ok {
		return fmt.Errorf("%w: invalid snapshot backend '%s'", contract.ErrConfiguration, backend)
	}
	connStr := viper.GetString("snapshot-connect")
	if backend == schema.FileBackend || backend == schema.SQLiteBackend {
		connStr = contract.ExpandPath(connStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if open {
		if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
			return fmt.Errorf("failed to initialize snapshot store: %w", err)
		}
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotConnect = connStr
	return nil
}

// snapshotCmd focused on snapshot management.
//
// Note: Snapshot subcommands use minimal initialization instead of the full
// sharedSetup. They never need a provider token or reference data.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the stored commit snapshot",
	Long: `Manage the commit snapshot written by collect and read by report.

Supported backends: file (default), SQLite, MySQL, PostgreSQL, MongoDB, Redis or None

Subcommands:
  status - Show snapshot statistics and connection info
  clear  - Remove the stored snapshot

Examples:
  # Check snapshot status
  gitcensus snapshot status

  # Force the next report to collect again
  gitcensus snapshot clear`,
}

// snapshotStatusCmd shows snapshot status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show the backend, project and commit counts, duplicates flagged, last
collection time and storage size of the stored snapshot.

Examples:
  gitcensus snapshot status
  GITCENSUS_SNAPSHOT_BACKEND=mongodb GITCENSUS_SNAPSHOT_CONNECT="mongodb://..." gitcensus snapshot status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return snapshotSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetSnapshotStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintSnapshotStatus(status)
	},
}

// snapshotClearCmd clears the snapshot.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored commit snapshot",
	Long: `Delete the stored snapshot from the configured backend.

For file and SQLite: Deletes the file
For MySQL/PostgreSQL: Drops the snapshot tables
For MongoDB: Drops the snapshot collection
For Redis: Deletes the snapshot keys

Examples:
  gitcensus snapshot clear
  GITCENSUS_SNAPSHOT_BACKEND=redis GITCENSUS_SNAPSHOT_CONNECT=localhost:6379 gitcensus snapshot clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return snapshotSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearSnapshots(cfg.SnapshotBackend, cfg.SnapshotConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot", err)
		}
		fmt.Println("Snapshot cleared successfully.")
	},
}
