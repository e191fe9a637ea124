// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts.
type UserRepository interface {
	// Create inserts a new user; errs.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// TouchLogin records the last successful login time.
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
