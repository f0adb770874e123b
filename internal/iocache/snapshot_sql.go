package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// Table names for SQL snapshot storage.
const (
	snapshotProjectsTable = "gitcensus_snapshot_projects"
	snapshotCommitsTable  = "gitcensus_snapshot_commits"
)

// SQLSnapshotStore stores one row per project and one row per listed commit.
// Projects with an empty listing keep their row so they survive a reload.
type SQLSnapshotStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SnapshotStore = &SQLSnapshotStore{} // Compile-time check

// NewSQLSnapshotStore opens a SQLite, MySQL or PostgreSQL snapshot store.
func NewSQLSnapshotStore(backend schema.DatabaseBackend, connStr string) (*SQLSnapshotStore, error) {
	db, err := openSQLDB(backend, connStr, contract.GetSnapshotDBFilePath())
	if err != nil {
		return nil, err
	}
	for _, query := range []string{getCreateSnapshotProjectsQuery(backend), getCreateSnapshotCommitsQuery(backend)} {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
		}
	}
	return &SQLSnapshotStore{db: db, backend: backend, connStr: connStr}, nil
}

// getCreateSnapshotProjectsQuery returns the CREATE TABLE query for gitcensus_snapshot_projects.
func getCreateSnapshotProjectsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotProjectsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path VARCHAR(512) PRIMARY KEY,
				commit_count INT NOT NULL,
				collected_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path TEXT PRIMARY KEY,
				commit_count INT NOT NULL,
				collected_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path TEXT PRIMARY KEY,
				commit_count INTEGER NOT NULL,
				collected_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateSnapshotCommitsQuery returns the CREATE TABLE query for gitcensus_snapshot_commits.
func getCreateSnapshotCommitsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotCommitsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path VARCHAR(512) NOT NULL,
				seq INT NOT NULL,
				commit_id VARCHAR(64) NOT NULL,
				duplicate BOOLEAN NOT NULL,
				payload LONGTEXT NOT NULL,
				collected_at DATETIME(6) NOT NULL,
				PRIMARY KEY (project_path, seq)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path TEXT NOT NULL,
				seq INT NOT NULL,
				commit_id TEXT NOT NULL,
				duplicate BOOLEAN NOT NULL,
				payload TEXT NOT NULL,
				collected_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (project_path, seq)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_path TEXT NOT NULL,
				seq INTEGER NOT NULL,
				commit_id TEXT NOT NULL,
				duplicate INTEGER NOT NULL,
				payload TEXT NOT NULL,
				collected_at TEXT NOT NULL,
				PRIMARY KEY (project_path, seq)
			);
		`, quotedTableName)
	}
}

// Load implements the SnapshotStore interface.
func (s *SQLSnapshotStore) Load(ctx context.Context) (schema.Snapshot, error) {
	snap := schema.Snapshot{}

	projectQuery := fmt.Sprintf("SELECT project_path FROM %s", quoteTableName(snapshotProjectsTable, s.backend))
	rows, err := s.db.QueryContext(ctx, projectQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot projects: %w", err)
	}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan snapshot project: %w", err)
		}
		snap[path] = []schema.FlaggedCommit{}
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot projects: %w", err)
	}

	commitQuery := fmt.Sprintf("SELECT project_path, duplicate, payload FROM %s ORDER BY project_path, seq", quoteTableName(snapshotCommitsTable, s.backend))
	rows, err = s.db.QueryContext(ctx, commitQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path, payload string
		var duplicate bool
		if err := rows.Scan(&path, &duplicate, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot commit: %w", err)
		}
		var commit schema.RawCommit
		if err := json.Unmarshal([]byte(payload), &commit); err != nil {
			return nil, fmt.Errorf("%w: stored commit in %s is malformed: %w", contract.ErrConfiguration, path, err)
		}
		snap[path] = append(snap[path], schema.FlaggedCommit{RawCommit: commit, Duplicate: duplicate})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot commits: %w", err)
	}
	return snap, nil
}

// Save implements the SnapshotStore interface. The previous snapshot is
// replaced inside one transaction.
func (s *SQLSnapshotStore) Save(ctx context.Context, snap schema.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	projects := quoteTableName(snapshotProjectsTable, s.backend)
	commits := quoteTableName(snapshotCommitsTable, s.backend)
	for _, table := range []string{commits, projects} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	projectStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (project_path, commit_count, collected_at) VALUES (%s)",
		projects, placeholders(s.backend, 3)))
	if err != nil {
		return fmt.Errorf("failed to prepare project insert: %w", err)
	}
	defer func() { _ = projectStmt.Close() }()

	commitStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (project_path, seq, commit_id, duplicate, payload, collected_at) VALUES (%s)",
		commits, placeholders(s.backend, 6)))
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert: %w", err)
	}
	defer func() { _ = commitStmt.Close() }()

	collectedAt := formatTime(time.Now(), s.backend)
	for path, list := range snap {
		if _, err = projectStmt.ExecContext(ctx, path, len(list), collectedAt); err != nil {
			return fmt.Errorf("failed to insert project %s: %w", path, err)
		}
		for seq, c := range list {
			payload, marshalErr := json.Marshal(c.RawCommit)
			if marshalErr != nil {
				err = marshalErr
				return fmt.Errorf("failed to encode commit %s: %w", c.ID, err)
			}
			if _, err = commitStmt.ExecContext(ctx, path, seq, c.ID, c.Duplicate, string(payload), collectedAt); err != nil {
				return fmt.Errorf("failed to insert commit %s of %s: %w", c.ID, path, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// GetStatus implements the SnapshotStore interface.
func (s *SQLSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.backend == schema.SQLiteBackend {
		status.Location = s.connStr
		if status.Location == "" {
			status.Location = contract.GetSnapshotDBFilePath()
		}
	}

	projects := quoteTableName(snapshotProjectsTable, s.backend)
	commits := quoteTableName(snapshotCommitsTable, s.backend)

	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", projects)).Scan(&status.TotalProjects); err != nil {
		return status, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", commits)).Scan(&status.TotalCommits); err != nil {
		return status, fmt.Errorf("failed to count commits: %w", err)
	}
	dupQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE duplicate = %s", commits, placeholders(s.backend, 1))
	if err := s.db.QueryRow(dupQuery, true).Scan(&status.Duplicates); err != nil {
		return status, fmt.Errorf("failed to count duplicates: %w", err)
	}

	last, ok, err := scanTime(s.db.QueryRow(fmt.Sprintf("SELECT MAX(collected_at) FROM %s", projects)), s.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get last collection time: %w", err)
	}
	if ok {
		status.LastCollected = last
	}

	status.StorageBytes = tableSizeBytes(s.db, s.backend, s.connStr, snapshotCommitsTable, status.TotalCommits)
	return status, nil
}

// Close closes the underlying DB connection.
func (s *SQLSnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
