package local

import (
	"context"
	"encoding/json"
	"time"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

type templateDoc struct {
	Entries   []model.TemplateEntry `json:"entries"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// TemplateRepo implements TemplateRepository on the local key-value table.
type TemplateRepo struct{ db *DB }

// NewTemplateRepo constructs a local template repository.
func NewTemplateRepo(db *DB) *TemplateRepo { return &TemplateRepo{db: db} }

// Get loads the template.
func (r *TemplateRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Template, error) {
	v, ok, err := r.db.get(ctx, templateKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNotFound
	}
	var doc templateDoc
	if err := json.Unmarshal([]byte(v), &doc); err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		doc.Entries = []model.TemplateEntry{}
	}
	return &model.Template{UserID: userID, Entries: doc.Entries, UpdatedAt: doc.UpdatedAt}, nil
}

// Save overwrites the template.
func (r *TemplateRepo) Save(ctx context.Context, userID uuid.UUID, entries []model.TemplateEntry) error {
	if entries == nil {
		entries = []model.TemplateEntry{}
	}
	raw, err := json.Marshal(templateDoc{Entries: entries, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return r.db.put(ctx, templateKey(userID), string(raw))
}

// Delete removes the template.
func (r *TemplateRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.db.del(ctx, templateKey(userID))
}
