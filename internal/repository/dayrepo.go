package repository

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DayRepository persists per-user, per-date intake records.
type DayRepository interface {
	// Get returns the record for date; an empty DayData when none is stored.
	Get(ctx context.Context, userID uuid.UUID, date civil.Date) (model.DayData, error)

	// Put fully replaces the supplement list stored for date.
	Put(ctx context.Context, userID uuid.UUID, date civil.Date, supps []model.Supplement) error

	// ListRange returns stored days in [from, to] ordered by date ascending.
	ListRange(ctx context.Context, userID uuid.UUID, from, to civil.Date) ([]model.DayData, error)

	// List returns every stored day ordered by date ascending.
	List(ctx context.Context, userID uuid.UUID) ([]model.DayData, error)
}
