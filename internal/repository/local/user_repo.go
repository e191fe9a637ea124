package local

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository on the local users table.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a local user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, pwd_hash, salt, created_at, last_login_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.SQL.ExecContext(ctx, q, u.ID.String(), u.Email, u.Name, u.PwdHash, u.Salt,
		u.CreatedAt.UTC().Format(time.RFC3339Nano), u.LastLoginAt.UTC().Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT id, email, name, pwd_hash, salt, created_at, last_login_at FROM users WHERE id = ?`
	return scanUser(r.db.SQL.QueryRowContext(ctx, q, id.String()))
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, name, pwd_hash, salt, created_at, last_login_at FROM users WHERE email = ?`
	return scanUser(r.db.SQL.QueryRowContext(ctx, q, email))
}

// TouchLogin updates the last login time.
func (r *UserRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.SQL.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u                  model.User
		id, created, login string
	)
	if err := row.Scan(&id, &u.Email, &u.Name, &u.PwdHash, &u.Salt, &created, &login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	var err error
	if u.ID, err = uuid.FromString(id); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = time.Parse(time.RFC3339Nano, login); err != nil {
		return nil, err
	}
	return &u, nil
}
