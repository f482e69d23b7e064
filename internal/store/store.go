// Package store exports catalog indexes to a SQLite database so they can be
// queried with SQL, and reads them back.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/template"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when an experiment was never exported.
var ErrNotFound = errors.New("experiment not found in store")

// Key identifies one exported experiment.
type Key struct {
	Host       string
	Case       string
	Experiment string
}

func (k Key) String() string {
	return k.Host + ":" + k.Case + "/" + k.Experiment
}

// Record is one experiment index to export.
type Record struct {
	Key
	// RunID ties the export to a run log; optional
	RunID string
	Index index.Index
}

// Scan describes one recorded export.
type Scan struct {
	ID         string
	RunID      string
	Key        Key
	Stats      index.Stats
	RecordedAt time.Time
}

// Store manages the SQLite export database
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at dbPath. ":memory:" opens a private
// in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so the remaining pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordScan replaces the stored index of one experiment and returns the ID
// of the new scan row.
func (s *Store) RecordScan(ctx context.Context, rec Record) (string, error) {
	scanID := uuid.NewString()
	stats := rec.Index.Stats()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"entries", "templates"} {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE host = ? AND case_name = ? AND experiment = ?",
			rec.Host, rec.Case, rec.Experiment)
		if err != nil {
			return "", fmt.Errorf("clear %s of %s: %w", table, rec.Key, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, run_id, host, case_name, experiment, templates, timestamps, files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID, nullString(rec.RunID), rec.Host, rec.Case, rec.Experiment,
		stats.Templates, stats.Timestamps, stats.Files)
	if err != nil {
		return "", fmt.Errorf("insert scan of %s: %w", rec.Key, err)
	}

	tmplStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO templates (host, case_name, experiment, file_template, scan_id)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare template insert: %w", err)
	}
	defer tmplStmt.Close()

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (host, case_name, experiment, file_template, timestamp, leadtime, scan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare entry insert: %w", err)
	}
	defer entryStmt.Close()

	for _, ft := range rec.Index.Templates() {
		if _, err := tmplStmt.ExecContext(ctx, rec.Host, rec.Case, rec.Experiment, ft, scanID); err != nil {
			return "", fmt.Errorf("insert template %s: %w", ft, err)
		}
		for _, ts := range rec.Index.Timestamps(ft) {
			lts := rec.Index.Leadtimes(ft, ts)
			if len(lts) == 0 {
				if _, err := entryStmt.ExecContext(ctx, rec.Host, rec.Case, rec.Experiment, ft, ts, nil, scanID); err != nil {
					return "", fmt.Errorf("insert entry %s %s: %w", ft, ts, err)
				}
				continue
			}
			for _, lt := range lts {
				if _, err := entryStmt.ExecContext(ctx, rec.Host, rec.Case, rec.Experiment, ft, ts, lt, scanID); err != nil {
					return "", fmt.Errorf("insert entry %s %s: %w", ft, ts, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit scan of %s: %w", rec.Key, err)
	}
	return scanID, nil
}

// LoadIndex rebuilds the stored index of one experiment.
func (s *Store) LoadIndex(ctx context.Context, key Key) (index.Index, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_template FROM templates
		WHERE host = ? AND case_name = ? AND experiment = ?`,
		key.Host, key.Case, key.Experiment)
	if err != nil {
		return nil, fmt.Errorf("query templates of %s: %w", key, err)
	}
	idx := index.New()
	for rows.Next() {
		var ft string
		if err := rows.Scan(&ft); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		idx.Ensure(ft)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT file_template, timestamp, leadtime FROM entries
		WHERE host = ? AND case_name = ? AND experiment = ?`,
		key.Host, key.Case, key.Experiment)
	if err != nil {
		return nil, fmt.Errorf("query entries of %s: %w", key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ft, ts   string
			leadtime sql.NullInt64
		)
		if err := rows.Scan(&ft, &ts, &leadtime); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		parsed, err := time.Parse(template.TimestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q in store: %w", ts, err)
		}
		if leadtime.Valid {
			idx.Add(ft, parsed, leadtime.Int64)
		} else {
			idx.Add(ft, parsed)
		}
	}
	return idx, rows.Err()
}

// Experiments lists the exported experiments, sorted.
func (s *Store) Experiments(ctx context.Context) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT host, case_name, experiment FROM templates
		ORDER BY host, case_name, experiment`)
	if err != nil {
		return nil, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	keys := make([]Key, 0)
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Host, &k.Case, &k.Experiment); err != nil {
			return nil, fmt.Errorf("scan experiment row: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// LatestScan returns the most recent export of an experiment.
func (s *Store) LatestScan(ctx context.Context, key Key) (*Scan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(run_id, ''), templates, timestamps, files, recorded_at
		FROM scans
		WHERE host = ? AND case_name = ? AND experiment = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT 1`,
		key.Host, key.Case, key.Experiment)

	scan := &Scan{Key: key}
	err := row.Scan(&scan.ID, &scan.RunID, &scan.Stats.Templates, &scan.Stats.Timestamps, &scan.Stats.Files, &scan.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest scan of %s: %w", key, err)
	}
	return scan, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
