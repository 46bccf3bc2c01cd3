// Package storage is the sqlite database behind the terminal's saved
// transcript and the server's visitor log.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load for a missing key.
var ErrNotFound = errors.New("key not found")

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS visitors (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip  TEXT NOT NULL,
	user_agent TEXT,
	path       TEXT,
	timestamp  TEXT NOT NULL,
	country    TEXT
);

CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);
`

// timeLayout sorts lexically, so range queries can compare strings.
const timeLayout = "2006-01-02 15:04:05"

// DB wraps the sqlite handle.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the parent directory and database file if needed and
// applies the schema. ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Load returns the blob stored under key.
func (d *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", key, err)
	}
	return value, nil
}

// Save stores data under key, replacing any previous value.
func (d *DB) Save(ctx context.Context, key string, data []byte) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, d.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
