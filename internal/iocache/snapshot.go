package iocache

import (
	"context"
	"fmt"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// NewSnapshotStore initializes and returns a SnapshotStore for the backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	switch backend {
	case schema.FileBackend:
		return NewFileSnapshotStore(connStr), nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLSnapshotStore(backend, connStr)
	case schema.MongoBackend:
		return NewMongoSnapshotStore(context.Background(), connStr)
	case schema.RedisBackend:
		return NewRedisSnapshotStore(context.Background(), connStr)
	case schema.NoneBackend:
		return &NoneSnapshotStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s. Must be file, sqlite, mysql, postgresql, mongodb, redis, or none", backend)
	}
}

// NoneSnapshotStore loads an empty snapshot and discards saves.
type NoneSnapshotStore struct{}

var _ contract.SnapshotStore = &NoneSnapshotStore{} // Compile-time check

// Load implements the SnapshotStore interface.
func (s *NoneSnapshotStore) Load(context.Context) (schema.Snapshot, error) {
	return schema.Snapshot{}, nil
}

// Save implements the SnapshotStore interface.
func (s *NoneSnapshotStore) Save(context.Context, schema.Snapshot) error { return nil }

// GetStatus implements the SnapshotStore interface.
func (s *NoneSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	return schema.SnapshotStatus{Backend: string(schema.NoneBackend)}, nil
}

// Close implements the SnapshotStore interface.
func (s *NoneSnapshotStore) Close() error { return nil }

// snapshotStats counts duplicates across a snapshot.
func snapshotStats(snap schema.Snapshot) (commits, duplicates int) {
	for _, list := range snap {
		for _, c := range list {
			commits++
			if c.Duplicate {
				duplicates++
			}
		}
	}
	return commits, duplicates
}
