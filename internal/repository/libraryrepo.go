package repository

import (
	"context"

	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// LibraryRepository persists a user's supplement catalog as a whole list.
type LibraryRepository interface {
	// Get returns the saved library or errs.ErrNotFound when none was ever saved.
	Get(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error)
	// Save replaces the library.
	Save(ctx context.Context, userID uuid.UUID, items []model.LibraryItem) error
}
