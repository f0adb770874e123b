package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

// Table names for run tracking.
const (
	runsTable        = "gitcensus_runs"
	runFailuresTable = "gitcensus_run_failures"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
// The none backend yields a store whose methods are no-ops.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported run tracking backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openSQLDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runFailuresTable, getCreateRunFailuresQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for gitcensus_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				projects_scanned INT NOT NULL DEFAULT 0,
				commits_kept INT NOT NULL DEFAULT 0,
				duplicates INT NOT NULL DEFAULT 0,
				fork_skipped INT NOT NULL DEFAULT 0,
				failure_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				projects_scanned INT NOT NULL DEFAULT 0,
				commits_kept INT NOT NULL DEFAULT 0,
				duplicates INT NOT NULL DEFAULT 0,
				fork_skipped INT NOT NULL DEFAULT 0,
				failure_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				projects_scanned INTEGER NOT NULL DEFAULT 0,
				commits_kept INTEGER NOT NULL DEFAULT 0,
				duplicates INTEGER NOT NULL DEFAULT 0,
				fork_skipped INTEGER NOT NULL DEFAULT 0,
				failure_count INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunFailuresQuery returns the CREATE TABLE query for gitcensus_run_failures.
func getCreateRunFailuresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runFailuresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				project_path VARCHAR(512) NOT NULL,
				reason TEXT NOT NULL,
				recorded_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				project_path TEXT NOT NULL,
				reason TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				project_path TEXT NOT NULL,
				reason TEXT NOT NULL,
				recorded_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store silently drops every call.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new collection run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun stores the run summary and its duration.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.CollectionSummary) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	startQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 1))
	startTime, ok, err := scanTime(rs.db.QueryRow(startQuery, runID), rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	if !ok {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, projects_scanned = $3,
			commits_kept = $4, duplicates = $5, fork_skipped = $6, failure_count = $7 WHERE run_id = $8`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, projects_scanned = ?,
			commits_kept = ?, duplicates = ?, fork_skipped = ?, failure_count = ? WHERE run_id = ?`, quotedTableName)
	}

	_, err = rs.db.Exec(updateQuery,
		formatTime(endTime, rs.backend), durationMs, summary.ProjectsScanned,
		summary.CommitsKept, summary.Duplicates, summary.ForkSkipped, len(summary.Failures), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordFailure stores a project whose listing failed during the run.
func (rs *RunStoreImpl) RecordFailure(runID int64, failure schema.CollectionFailure) error {
	if rs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, project_path, reason, recorded_at) VALUES (%s)`,
		quoteTableName(runFailuresTable, rs.backend), placeholders(rs.backend, 4))
	if _, err := rs.db.Exec(query, runID, failure.ProjectPath, failure.Reason, formatTime(time.Now(), rs.backend)); err != nil {
		return fmt.Errorf("failed to insert run failure: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT MAX(run_id) FROM %s", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		lastQuery := fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", quotedRuns, placeholders(rs.backend, 1))
		last, _, err := scanTime(rs.db.QueryRow(lastQuery, status.LastRunID), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		oldest, _, err := scanTime(rs.db.QueryRow(oldestQuery), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(commits_kept), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalCommits); err != nil {
			return status, fmt.Errorf("failed to get total commits: %w", err)
		}
	}

	for _, table := range []string{runsTable, runFailuresTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFailures = int(status.TableSizes[runFailuresTable])

	return status, nil
}

// GetAllRuns retrieves all collection runs ordered by run ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, projects_scanned,
		commits_kept, duplicates, fork_skipped, failure_count, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.ProjectsScanned,
				&record.CommitsKept, &record.Duplicates, &record.ForkSkipped, &record.FailureCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.ProjectsScanned,
				&record.CommitsKept, &record.Duplicates, &record.ForkSkipped, &record.FailureCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllFailures retrieves all recorded project failures ordered by run.
func (rs *RunStoreImpl) GetAllFailures() ([]schema.RunFailureRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, project_path, reason, recorded_at FROM %s ORDER BY run_id, project_path`,
		quoteTableName(runFailuresTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunFailureRecord
	for rows.Next() {
		var record schema.RunFailureRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var recordedAtStr string
			if err := rows.Scan(&record.RunID, &record.ProjectPath, &record.Reason, &recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan run failure: %w", err)
			}
			recordedAt, err := time.Parse(time.RFC3339Nano, recordedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
			record.RecordedAt = recordedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.ProjectPath, &record.Reason, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan run failure: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run failures: %w", err)
	}
	return results, nil
}
