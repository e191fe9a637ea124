package firestore

import (
	"context"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// LibraryRepo implements LibraryRepository on the supplementLibraries collection.
type LibraryRepo struct{ db *DB }

// NewLibraryRepo constructs a Firestore library repository.
func NewLibraryRepo(db *DB) *LibraryRepo { return &LibraryRepo{db: db} }

// Get loads the library.
func (r *LibraryRepo) Get(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error) {
	snap, err := r.db.Client.Collection(colLibraries).Doc(userID.String()).Get(ctx)
	if isNotFound(err) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc libraryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	out := make([]model.LibraryItem, 0, len(doc.Library))
	for _, it := range doc.Library {
		out = append(out, model.LibraryItem{ID: it.ID, Name: it.Name, DefaultDosage: it.DefaultDosage, Category: it.Category})
	}
	return out, nil
}

// Save replaces the library document.
func (r *LibraryRepo) Save(ctx context.Context, userID uuid.UUID, items []model.LibraryItem) error {
	doc := libraryDoc{Library: make([]libraryItemDoc, 0, len(items))}
	for _, it := range items {
		doc.Library = append(doc.Library, libraryItemDoc{ID: it.ID, Name: it.Name, DefaultDosage: it.DefaultDosage, Category: it.Category})
	}
	_, err := r.db.Client.Collection(colLibraries).Doc(userID.String()).Set(ctx, doc)
	return err
}
