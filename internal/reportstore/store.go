// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reportstore persists analysis reports and their run event logs
// in a SQLite database keyed by request ID.
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gap-engine/pkg/types"
)

const dbFile = "gap-engine.db"

// ErrNotFound is returned when no report exists for a request ID.
var ErrNotFound = fmt.Errorf("report not found")

// Store manages the report SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the report database at cfg.Dir/gap-engine.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			request_id TEXT PRIMARY KEY,
			seed_paper_url TEXT,
			status TEXT NOT NULL,
			gaps_validated INTEGER,
			report TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL REFERENCES reports(request_id),
			kind TEXT NOT NULL,
			at TEXT NOT NULL,
			paper_id TEXT,
			gap_id TEXT,
			domain TEXT,
			query TEXT,
			confidence REAL,
			err TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_request_id ON events(request_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save writes a report and its event log. Saving the same request ID again
// replaces both.
func (s *Store) Save(ctx context.Context, report *types.AnalysisReport, events []types.Event) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (request_id, seed_paper_url, status, gaps_validated, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(request_id) DO UPDATE SET
			seed_paper_url=excluded.seed_paper_url, status=excluded.status,
			gaps_validated=excluded.gaps_validated, report=excluded.report,
			created_at=excluded.created_at`,
		report.RequestID, report.SeedPaperURL, string(report.Status),
		len(report.ValidatedGaps), string(reportJSON),
		report.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting report: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE request_id = ?`, report.RequestID); err != nil {
		return fmt.Errorf("deleting old events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (request_id, kind, at, paper_id, gap_id, domain, query, confidence, err)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.ExecContext(ctx,
			report.RequestID, string(ev.Kind), ev.At.UTC().Format(time.RFC3339Nano),
			ev.PaperID, ev.GapID, ev.Domain, ev.Query, ev.Confidence, ev.Err,
		)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}

	return tx.Commit()
}

// Get loads the report stored for a request ID. Returns ErrNotFound when
// no report exists.
func (s *Store) Get(ctx context.Context, requestID string) (*types.AnalysisReport, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE request_id = ?`, requestID,
	).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	var report types.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", requestID, err)
	}
	return &report, nil
}

// Summary is one row of the report listing.
type Summary struct {
	RequestID     string
	SeedPaperURL  string
	Status        types.RunStatus
	GapsValidated int
	CreatedAt     time.Time
}

// List returns stored report summaries, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, seed_paper_url, status, gaps_validated, created_at
		 FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var status, createdAt string
		if err := rows.Scan(&sum.RequestID, &sum.SeedPaperURL, &status, &sum.GapsValidated, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		sum.Status = types.RunStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			sum.CreatedAt = t
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Events loads the event log stored for a request ID, in insertion order.
func (s *Store) Events(ctx context.Context, requestID string) ([]types.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, at, paper_id, gap_id, domain, query, confidence, err
		 FROM events WHERE request_id = ? ORDER BY rowid`, requestID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var ev types.Event
		var kind, at string
		if err := rows.Scan(&kind, &at, &ev.PaperID, &ev.GapID, &ev.Domain, &ev.Query, &ev.Confidence, &ev.Err); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		ev.Kind = types.EventKind(kind)
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			ev.At = t
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
