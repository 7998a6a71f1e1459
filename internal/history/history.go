// Package history persists a record of fired alarm cycles to sqlite.
//
// Recording is optional: a Runner without a database path simply never
// constructs a Store.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one fired alarm cycle.
type Entry struct {
	ID         int64
	FiredAt    time.Time
	Target     string
	DeviceID   string
	DeviceName string
	Attempts   int
	Outcome    string
	Error      string
}

// Store provides access to the alarm_history table.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database. The caller is
// responsible for running migrations first.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one fired-cycle entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alarm_history (fired_at, target_time, device_id, device_name, attempts, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.FiredAt.UTC().Format(time.RFC3339), e.Target, e.DeviceID, e.DeviceName, e.Attempts, e.Outcome, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record alarm history: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fired_at, target_time, device_id, device_name, attempts, outcome, error
		FROM alarm_history
		ORDER BY fired_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarm history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var firedAt string
		if err := rows.Scan(&e.ID, &firedAt, &e.Target, &e.DeviceID, &e.DeviceName, &e.Attempts, &e.Outcome, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan alarm history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, firedAt); err == nil {
			e.FiredAt = t
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alarm history rows: %w", err)
	}

	return entries, nil
}
