// Package local is the on-device fallback store: a SQLite file holding a key-value table keyed
// like browser local storage (user_<id>_<date>, user_<id>_library, user_<id>_template) plus users.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/and161185/supp-tracker/internal/migrate"
)

// DB wraps the SQLite handle shared by the local repositories.
type DB struct{ SQL *sql.DB }

// Open opens (or creates) the SQLite file at path and applies migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := migrate.UpSQLite(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &DB{SQL: sqlDB}, nil
}

// Ping checks the handle.
func (db *DB) Ping(ctx context.Context) error { return db.SQL.PingContext(ctx) }

// Close closes the handle.
func (db *DB) Close() error { return db.SQL.Close() }

func nowText() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (db *DB) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := db.SQL.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (db *DB) put(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.SQL.ExecContext(ctx, q, key, value, nowText())
	return err
}

func (db *DB) del(ctx context.Context, key string) error {
	_, err := db.SQL.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// scan returns values whose key lies in [lo, hi] ordered by key.
func (db *DB) scan(ctx context.Context, lo, hi string) ([]string, error) {
	rows, err := db.SQL.QueryContext(ctx, `SELECT value FROM kv WHERE key BETWEEN ? AND ? ORDER BY key ASC`, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
