// Package store persists the shop's records in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write lost to a concurrent or earlier one.
	ErrConflict = errors.New("conflicting write")
)

const timeLayout = "2006-01-02 15:04:05"

// Store groups the repositories over one database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle for callers that need a transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

func newID() string {
	return uuid.NewString()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, raw, time.UTC)
	if err != nil {
		// rows written by hand may carry RFC 3339 timestamps
		if t2, err2 := time.Parse(time.RFC3339, raw); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func affectedOrNotFound(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
