package local

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DayRepo implements DayRepository on the local key-value table.
type DayRepo struct{ db *DB }

// NewDayRepo constructs a local day repository.
func NewDayRepo(db *DB) *DayRepo { return &DayRepo{db: db} }

// Get returns the stored day or an empty one.
func (r *DayRepo) Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error) {
	v, ok, err := r.db.get(ctx, dayKey(userID, date))
	if err != nil {
		return model.DayData{}, err
	}
	if !ok {
		return model.EmptyDay(date), nil
	}
	return decodeDay(v)
}

// Put replaces the day record.
func (r *DayRepo) Put(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error {
	if supps == nil {
		supps = []model.Supplement{}
	}
	raw, err := json.Marshal(model.DayData{Date: date, Supplements: supps})
	if err != nil {
		return err
	}
	return r.db.put(ctx, dayKey(userID, date), string(raw))
}

// ListRange returns stored days in [from, to] ascending.
func (r *DayRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	vals, err := r.db.scan(ctx, dayKey(userID, from), dayKey(userID, to))
	if err != nil {
		return nil, err
	}
	return decodeDays(vals)
}

// List returns every stored day ascending.
func (r *DayRepo) List(ctx context.Context, userID uuid.UUID) ([]model.DayData, error) {
	lo, hi := allDaysBounds(userID)
	vals, err := r.db.scan(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	return decodeDays(vals)
}

func decodeDay(v string) (model.DayData, error) {
	var d model.DayData
	if err := json.Unmarshal([]byte(v), &d); err != nil {
		return model.DayData{}, fmt.Errorf("decode local day: %w", err)
	}
	if d.Supplements == nil {
		d.Supplements = []model.Supplement{}
	}
	return d, nil
}

func decodeDays(vals []string) ([]model.DayData, error) {
	out := make([]model.DayData, 0, len(vals))
	for _, v := range vals {
		d, err := decodeDay(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
