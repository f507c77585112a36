package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps the last good timecode per page origin. It stands in for the
// page's localStorage when the browser profile does not outlive the run.
type Store struct {
	db *sql.DB
}

// DefaultPath is ~/.timejump/last.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".timejump", "last.db")
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("sqlitestore: mkdir %s: %w", filepath.Dir(path), err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS last_input (
		origin     TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context, origin string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM last_input WHERE origin = ?`, origin).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlitestore: load %q: %w", origin, err)
	}
	return v, true, nil
}

func (s *Store) Save(ctx context.Context, origin, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO last_input (origin, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(origin) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		origin, value, now)
	if err != nil {
		return fmt.Errorf("sqlitestore: save %q: %w", origin, err)
	}
	return nil
}
