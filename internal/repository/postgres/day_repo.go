package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DayRepo implements DayRepository using PostgreSQL.
type DayRepo struct{ db *DB }

// NewDayRepo constructs a day repository.
func NewDayRepo(db *DB) *DayRepo { return &DayRepo{db: db} }

// Get returns the stored day or an empty one.
func (r *DayRepo) Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error) {
	const q = `SELECT supplements FROM day_entries WHERE user_id=$1 AND day=$2`
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, q, userID, dateArg(date)).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.EmptyDay(date), nil
	case err != nil:
		return model.DayData{}, err
	}
	supps, err := decodeList[model.Supplement](raw)
	if err != nil {
		return model.DayData{}, fmt.Errorf("decode day %s: %w", date, err)
	}
	return model.DayData{Date: date, Supplements: supps}, nil
}

// Put replaces the supplement list of a day (insert or overwrite).
func (r *DayRepo) Put(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error {
	const q = `
INSERT INTO day_entries (user_id, day, supplements, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, day) DO UPDATE SET supplements=EXCLUDED.supplements, updated_at=now()`
	raw, err := jsonList(supps)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, q, userID, dateArg(date), raw)
	return err
}

// ListRange returns stored days in [from, to] ascending.
func (r *DayRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	const q = `
SELECT day, supplements
FROM day_entries
WHERE user_id=$1 AND day BETWEEN $2 AND $3
ORDER BY day ASC`
	return r.list(ctx, q, userID, dateArg(from), dateArg(to))
}

// List returns every stored day ascending.
func (r *DayRepo) List(ctx context.Context, userID uuid.UUID) ([]model.DayData, error) {
	const q = `SELECT day, supplements FROM day_entries WHERE user_id=$1 ORDER BY day ASC`
	return r.list(ctx, q, userID)
}

func (r *DayRepo) list(ctx context.Context, q string, args ...any) ([]model.DayData, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DayData{}
	for rows.Next() {
		var (
			day time.Time
			raw []byte
		)
		if err = rows.Scan(&day, &raw); err != nil {
			return nil, err
		}
		supps, err := decodeList[model.Supplement](raw)
		if err != nil {
			return nil, fmt.Errorf("decode day %s: %w", day.Format(time.DateOnly), err)
		}
		out = append(out, model.DayData{Date: civil.DateOf(day), Supplements: supps})
	}
	return out, rows.Err()
}
