package iocache

import (
	"context"
	"time"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Load implements the SnapshotStore interface.
func (m *MockSnapshotStore) Load(ctx context.Context) (schema.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(schema.Snapshot)
	return snap, args.Error(1)
}

// Save implements the SnapshotStore interface.
func (m *MockSnapshotStore) Save(ctx context.Context, snap schema.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SnapshotStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, summary schema.CollectionSummary) error {
	args := m.Called(runID, endTime, summary)
	return args.Error(0)
}

// RecordFailure implements the RunStore interface.
func (m *MockRunStore) RecordFailure(runID int64, failure schema.CollectionFailure) error {
	args := m.Called(runID, failure)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllFailures implements the RunStore interface.
func (m *MockRunStore) GetAllFailures() ([]schema.RunFailureRecord, error) {
	args := m.Called()
	failures, _ := args.Get(0).([]schema.RunFailureRecord)
	return failures, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
