package iocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// FileSnapshotStore keeps the snapshot as one JSON object keyed by project path.
type FileSnapshotStore struct {
	path string
}

var _ contract.SnapshotStore = &FileSnapshotStore{} // Compile-time check

// NewFileSnapshotStore returns a store backed by path, or the default snapshot file.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	if path == "" {
		path = contract.DefaultSnapshotFile
	}
	return &FileSnapshotStore{path: path}
}

// Load implements the SnapshotStore interface. A missing file is an empty snapshot.
func (s *FileSnapshotStore) Load(context.Context) (schema.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return schema.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}
	snap := schema.Snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: snapshot %s is malformed: %w", contract.ErrConfiguration, s.path, err)
	}
	return snap, nil
}

// Save implements the SnapshotStore interface. The file is replaced atomically.
func (s *FileSnapshotStore) Save(_ context.Context, snap schema.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetStatus implements the SnapshotStore interface.
func (s *FileSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:  string(schema.FileBackend),
		Location: s.path,
	}
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		status.Connected = true
		return status, nil
	}
	if err != nil {
		return status, err
	}
	status.Connected = true
	status.StorageBytes = info.Size()
	status.LastCollected = info.ModTime()

	snap, err := s.Load(context.Background())
	if err != nil {
		return status, err
	}
	status.TotalProjects = len(snap)
	status.TotalCommits, status.Duplicates = snapshotStats(snap)
	return status, nil
}

// Close implements the SnapshotStore interface.
func (s *FileSnapshotStore) Close() error { return nil }

// Path returns the snapshot file location.
func (s *FileSnapshotStore) Path() string { return s.path }
