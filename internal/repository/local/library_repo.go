package local

import (
	"context"
	"encoding/json"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

type libraryDoc struct {
	Library []model.LibraryItem `json:"library"`
}

// LibraryRepo implements LibraryRepository on the local key-value table.
type LibraryRepo struct{ db *DB }

// NewLibraryRepo constructs a local library repository.
func NewLibraryRepo(db *DB) *LibraryRepo { return &LibraryRepo{db: db} }

// Get loads the library.
func (r *LibraryRepo) Get(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error) {
	v, ok, err := r.db.get(ctx, libraryKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNotFound
	}
	var doc libraryDoc
	if err := json.Unmarshal([]byte(v), &doc); err != nil {
		return nil, err
	}
	if doc.Library == nil {
		doc.Library = []model.LibraryItem{}
	}
	return doc.Library, nil
}

// Save replaces the library.
func (r *LibraryRepo) Save(ctx context.Context, userID uuid.UUID, items []model.LibraryItem) error {
	if items == nil {
		items = []model.LibraryItem{}
	}
	raw, err := json.Marshal(libraryDoc{Library: items})
	if err != nil {
		return err
	}
	return r.db.put(ctx, libraryKey(userID), string(raw))
}
