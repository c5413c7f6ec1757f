// Package audit persists finished runs to SQLite.
//
// The audit store is an optional output artifact: after a run completes, the
// engine's final snapshots and the run's metadata are written in one
// transaction. It records results; it is not a recovery mechanism.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the audit database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the audit database at the given path and applies
// the schema. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY on the write path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run is the metadata recorded for one completed engine run.
type Run struct {
	ID         string
	InputPath  string
	Shards     int
	Processed  int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun writes the run row and all its account snapshots in a single
// transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, snaps []account.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	// Fixed-width timestamps keep the text ordering of started_at
	// chronological; RFC3339Nano drops a zero fraction.
	const stamp = "2006-01-02T15:04:05.000000000Z07:00"
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input_path, shards, processed, skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.Shards, run.Processed, run.Skipped,
		run.StartedAt.UTC().Format(stamp),
		run.FinishedAt.UTC().Format(stamp),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (run_id, client, available, held, total, locked)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		_, err := stmt.ExecContext(ctx,
			run.ID, int64(snap.Client),
			model.FormatAmount(snap.Available),
			model.FormatAmount(snap.Held),
			model.FormatAmount(snap.Total),
			snap.Locked,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot for client %d: %w", snap.Client, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit transaction: %w", err)
	}
	return nil
}

// Runs lists all recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, input_path, shards, processed, skipped, started_at, finished_at
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.InputPath, &run.Shards,
			&run.Processed, &run.Skipped, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("corrupt started_at %q: %w", started, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("corrupt finished_at %q: %w", finished, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Snapshots reads back the snapshots of a run, ordered by client id.
func (s *Store) Snapshots(ctx context.Context, runID string) ([]account.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client, available, held, total, locked
		 FROM snapshots WHERE run_id = ? ORDER BY client`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots for run %s: %w", runID, err)
	}
	defer rows.Close()

	var snaps []account.Snapshot
	for rows.Next() {
		var (
			client                 int64
			available, held, total string
			locked                 bool
		)
		if err := rows.Scan(&client, &available, &held, &total, &locked); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap := account.Snapshot{Client: model.ClientID(client), Locked: locked}
		if snap.Available, err = parseStored(available); err != nil {
			return nil, err
		}
		if snap.Held, err = parseStored(held); err != nil {
			return nil, err
		}
		if snap.Total, err = parseStored(total); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
