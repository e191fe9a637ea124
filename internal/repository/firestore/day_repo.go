package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/firestore"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DayRepo implements DayRepository on the dailyData collection.
type DayRepo struct{ db *DB }

// NewDayRepo constructs a Firestore day repository.
func NewDayRepo(db *DB) *DayRepo { return &DayRepo{db: db} }

// Get returns the stored day or an empty one.
func (r *DayRepo) Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error) {
	snap, err := r.db.Client.Collection(colDays).Doc(dayID(userID, date)).Get(ctx)
	if isNotFound(err) {
		return model.EmptyDay(date), nil
	}
	if err != nil {
		return model.DayData{}, err
	}
	var doc dayDoc
	if err := snap.DataTo(&doc); err != nil {
		return model.DayData{}, fmt.Errorf("decode day %s: %w", date, err)
	}
	doc.Date = date.String()
	return doc.model()
}

// Put overwrites the day document.
func (r *DayRepo) Put(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error {
	doc := dayDoc{
		UserID:      userID.String(),
		Date:        date.String(),
		Supplements: toSupplementDocs(supps),
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := r.db.Client.Collection(colDays).Doc(dayID(userID, date)).Set(ctx, doc)
	return err
}

// ListRange returns stored days in [from, to] ascending.
func (r *DayRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error) {
	q := r.db.Client.Collection(colDays).
		Where("userId", "==", userID.String()).
		Where("date", ">=", from.String()).
		Where("date", "<=", to.String()).
		OrderBy("date", firestore.Asc)
	return collect(ctx, q)
}

// List returns every stored day ascending.
func (r *DayRepo) List(ctx context.Context, userID uuid.UUID) ([]model.DayData, error) {
	q := r.db.Client.Collection(colDays).
		Where("userId", "==", userID.String()).
		OrderBy("date", firestore.Asc)
	return collect(ctx, q)
}

func collect(ctx context.Context, q firestore.Query) ([]model.DayData, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.DayData, 0, len(snaps))
	for _, s := range snaps {
		var doc dayDoc
		if err := s.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.Ref.ID, err)
		}
		d, err := doc.model()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.Ref.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}
