package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Tracker keeps an audit trail of mining runs in a local SQLite database:
// one row per run plus one row per video id that failed both attempts.
// The checkpoint files remain the source of truth for mined data; the
// tracker only answers "what failed, and when".
type Tracker struct {
	db *sql.DB
}

// OpenTracker opens (or creates) the tracker database at path.
func OpenTracker(path string) (*Tracker, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("tracker: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracker: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initTrackerSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("tracker: init schema: %w", err)
	}
	return &Tracker{db: db}, nil
}

func initTrackerSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		channels    INTEGER NOT NULL DEFAULT 0,
		mined       INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS failures (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       INTEGER NOT NULL,
		channel_id   TEXT NOT NULL,
		video_id     TEXT NOT NULL,
		first_error  TEXT NOT NULL,
		second_error TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`)
	return err
}

// Close closes the underlying database.
func (t *Tracker) Close() error { return t.db.Close() }

// BeginRun inserts a new run row and returns its id.
func (t *Tracker) BeginRun(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := t.db.ExecContext(ctx, `INSERT INTO runs (started_at) VALUES (?)`, now)
	if err != nil {
		return 0, fmt.Errorf("tracker: begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tracker: begin run: %w", err)
	}
	return id, nil
}

// RecordFailure stores one twice-failed video id with both error texts.
func (t *Tracker) RecordFailure(ctx context.Context, runID int64, channelID string, f Failure) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO failures (run_id, channel_id, video_id, first_error, second_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, channelID, f.VideoID, f.First, f.Second, now,
	)
	if err != nil {
		return fmt.Errorf("tracker: record failure: %w", err)
	}
	return nil
}

// FinishRun closes a run row with its final counters.
func (t *Tracker) FinishRun(ctx context.Context, runID int64, channels, mined, failed int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := t.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, channels = ?, mined = ?, failed = ? WHERE id = ?`,
		now, channels, mined, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("tracker: finish run: %w", err)
	}
	return nil
}

// RecordedFailure is a Failure as stored, with its channel attribution.
type RecordedFailure struct {
	ChannelID string
	Failure
}

// RunFailures lists the failures recorded for one run, oldest first.
func (t *Tracker) RunFailures(ctx context.Context, runID int64) ([]RecordedFailure, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT channel_id, video_id, first_error, second_error
		 FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("tracker: list failures: %w", err)
	}
	defer rows.Close()

	var out []RecordedFailure
	for rows.Next() {
		var rf RecordedFailure
		if err := rows.Scan(&rf.ChannelID, &rf.VideoID, &rf.First, &rf.Second); err != nil {
			return nil, fmt.Errorf("tracker: scan failure: %w", err)
		}
		out = append(out, rf)
	}
	return out, rows.Err()
}
