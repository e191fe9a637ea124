// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/supp-tracker/migrations"
)

// goose keeps dialect and base FS in package globals.
var mu sync.Mutex

// Up runs all pending PostgreSQL migrations for the given DSN.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return run(ctx, db, "postgres", "postgres")
}

// UpSQLite runs all pending migrations against an open SQLite handle.
func UpSQLite(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "sqlite3", "sqlite")
}

func run(ctx context.Context, db *sql.DB, dialect, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}
