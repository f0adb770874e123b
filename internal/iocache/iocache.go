// Package iocache persists collected snapshots and collection run history.
package iocache

import (
	"sync"

	"github.com/huangsam/gitcensus/internal/contract"
)

// StoreManager manages the snapshot and run store instances.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     contract.SnapshotStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot SnapshotStore.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetRunStore returns the run RunStore.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
