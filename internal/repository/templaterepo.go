package repository

import (
	"context"

	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// TemplateRepository persists the single daily template of a user.
type TemplateRepository interface {
	// Get returns the template or errs.ErrNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*model.Template, error)
	// Save overwrites the template.
	Save(ctx context.Context, userID uuid.UUID, entries []model.TemplateEntry) error
	// Delete removes the template; deleting a missing template is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}
