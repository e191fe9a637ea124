package firestore

import (
	"context"
	"time"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TemplateRepo implements TemplateRepository on the dailyTemplates collection.
type TemplateRepo struct{ db *DB }

// NewTemplateRepo constructs a Firestore template repository.
func NewTemplateRepo(db *DB) *TemplateRepo { return &TemplateRepo{db: db} }

// Get loads the template.
func (r *TemplateRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Template, error) {
	snap, err := r.db.Client.Collection(colTemplates).Doc(userID.String()).Get(ctx)
	if isNotFound(err) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc templateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	entries := make([]model.TemplateEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entries = append(entries, model.TemplateEntry{Name: e.Name, Dosage: e.Dosage, TimeCategory: model.TimeCategory(e.TimeCategory)})
	}
	return &model.Template{UserID: userID, Entries: entries, UpdatedAt: doc.UpdatedAt}, nil
}

// Save overwrites the template.
func (r *TemplateRepo) Save(ctx context.Context, userID uuid.UUID, entries []model.TemplateEntry) error {
	doc := templateDoc{Entries: make([]entryDoc, 0, len(entries)), UpdatedAt: time.Now().UTC()}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, entryDoc{Name: e.Name, Dosage: e.Dosage, TimeCategory: string(e.TimeCategory)})
	}
	_, err := r.db.Client.Collection(colTemplates).Doc(userID.String()).Set(ctx, doc)
	return err
}

// Delete removes the template document.
func (r *TemplateRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Client.Collection(colTemplates).Doc(userID.String()).Delete(ctx)
	if isNotFound(err) {
		return nil
	}
	return err
}
