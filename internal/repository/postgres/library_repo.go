package postgres

import (
	"context"
	"errors"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// LibraryRepo implements LibraryRepository using PostgreSQL.
type LibraryRepo struct{ db *DB }

// NewLibraryRepo constructs a library repository.
func NewLibraryRepo(db *DB) *LibraryRepo { return &LibraryRepo{db: db} }

// Get loads the saved library.
func (r *LibraryRepo) Get(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error) {
	const q = `SELECT items FROM supplement_libraries WHERE user_id=$1`
	var raw []byte
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return decodeList[model.LibraryItem](raw)
}

// Save replaces the library.
func (r *LibraryRepo) Save(ctx context.Context, userID uuid.UUID, items []model.LibraryItem) error {
	const q = `
INSERT INTO supplement_libraries (user_id, items, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET items=EXCLUDED.items, updated_at=now()`
	raw, err := jsonList(items)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, q, userID, raw)
	return err
}
