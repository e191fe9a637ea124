package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository on the users collection.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a Firestore user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user; the email check and insert share one transaction.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	users := r.db.Client.Collection(colUsers)
	ref := users.Doc(u.ID.String())
	return r.db.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", u.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errs.ErrAlreadyExists
		}
		return tx.Create(ref, userDoc{
			Email:       u.Email,
			Name:        u.Name,
			PwdHash:     u.PwdHash,
			Salt:        u.Salt,
			CreatedAt:   u.CreatedAt,
			LastLoginAt: u.LastLoginAt,
		})
	})
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	snap, err := r.db.Client.Collection(colUsers).Doc(id.String()).Get(ctx)
	if isNotFound(err) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(snap)
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	snaps, err := r.db.Client.Collection(colUsers).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errs.ErrNotFound
	}
	return decodeUser(snaps[0])
}

// TouchLogin updates the last login time.
func (r *UserRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Client.Collection(colUsers).Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "lastLoginAt", Value: at},
	})
	if isNotFound(err) {
		return errs.ErrNotFound
	}
	return err
}

func decodeUser(snap *firestore.DocumentSnapshot) (*model.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	id, err := uuid.FromString(snap.Ref.ID)
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:          id,
		Email:       doc.Email,
		Name:        doc.Name,
		PwdHash:     doc.PwdHash,
		Salt:        doc.Salt,
		CreatedAt:   doc.CreatedAt,
		LastLoginAt: doc.LastLoginAt,
	}, nil
}
