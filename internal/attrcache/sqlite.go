package attrcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend is the default, embedded attrcache backend: a single
// key/value table in a local sqlite file. Grounded on teal-fm-piper's
// and other_examples' sqlite-backed local stores; spec §6.4 names
// "LMDB, sled-like, or a JSON blob" as acceptable, and sqlite is the
// nearest embedded-KV analogue available in this module's pack.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if absent) a sqlite-backed attribute
// cache at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS attrs (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("attrcache: create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// GetRaw implements Backend.
func (b *SQLiteBackend) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM attrs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// SetRaw implements Backend.
func (b *SQLiteBackend) SetRaw(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO attrs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error { return b.db.Close() }
