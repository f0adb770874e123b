package iocache

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with separate snapshot and run stores.
// An empty backend leaves the corresponding store unset.
func InitStores(snapshotBackend schema.DatabaseBackend, snapshotConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var snapshotStore contract.SnapshotStore
		if snapshotBackend != "" {
			snapshotStore, err = NewSnapshotStore(snapshotBackend, snapshotConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
				return
			}
		}

		var runStore contract.RunStore
		if runsBackend != "" {
			runStore, err = NewRunStore(runsBackend, runsConnStr)
			if err != nil {
				if snapshotStore != nil {
					_ = snapshotStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.snapshot = snapshotStore
		Manager.runs = runStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.snapshot != nil {
			_ = Manager.snapshot.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearSnapshots removes the stored snapshot for the specified backend.
// File-based backends delete their file; servers drop their tables, collection or keys.
func ClearSnapshots(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend:
		if connStr == "" {
			connStr = contract.DefaultSnapshotFile
		}
		return removeFile(connStr)

	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = contract.GetSnapshotDBFilePath()
		}
		return removeFile(connStr)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, snapshotCommitsTable, snapshotProjectsTable)

	case schema.MongoBackend:
		return clearMongoSnapshot(context.Background(), connStr)

	case schema.RedisBackend:
		return clearRedisSnapshot(context.Background(), connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported snapshot backend for clearing: %s", backend)
	}
}

// ClearRuns removes run history for the specified backend.
func ClearRuns(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = contract.GetRunsDBFilePath()
		}
		return removeFile(connStr)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, runFailuresTable, runsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported run backend for clearing: %s", backend)
	}
}

// removeFile deletes path, ignoring a file that does not exist.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
