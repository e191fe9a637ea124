package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// TemplateRepo implements TemplateRepository using PostgreSQL.
type TemplateRepo struct{ db *DB }

// NewTemplateRepo constructs a template repository.
func NewTemplateRepo(db *DB) *TemplateRepo { return &TemplateRepo{db: db} }

// Get loads the user's template.
func (r *TemplateRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Template, error) {
	const q = `SELECT entries, updated_at FROM daily_templates WHERE user_id=$1`
	var (
		raw []byte
		ts  time.Time
	)
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&raw, &ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	entries, err := decodeList[model.TemplateEntry](raw)
	if err != nil {
		return nil, err
	}
	return &model.Template{UserID: userID, Entries: entries, UpdatedAt: ts}, nil
}

// Save upserts the template.
func (r *TemplateRepo) Save(ctx context.Context, userID uuid.UUID, entries []model.TemplateEntry) error {
	const q = `
INSERT INTO daily_templates (user_id, entries, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET entries=EXCLUDED.entries, updated_at=now()`
	raw, err := jsonList(entries)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, q, userID, raw)
	return err
}

// Delete removes the template.
func (r *TemplateRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM daily_templates WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}
