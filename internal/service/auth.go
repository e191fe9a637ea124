// Package service contains application services: accounts, daily intake, library, templates and stats.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/supp-tracker/internal/crypto"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/limiter"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// AuthService defines account operations.
type AuthService interface {
	// Register creates a new account.
	Register(ctx context.Context, email, password, name string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (tokens model.Tokens, user model.User, err error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, now: time.Now}
}

// ValidateAccount checks registration input.
func ValidateAccount(email, password, name string) error {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return fmt.Errorf("%w: please fill in all fields", errs.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: please enter a valid email address", errs.ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters long", errs.ErrValidation, MinPasswordLen)
	}
	return nil
}

// Register creates a new user record with a per-user salt.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, name string) (string, error) {
	if err := ValidateAccount(email, password, name); err != nil {
		return "", err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	hash, salt, err := pkgcrypto.NewHash(password)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	u := &model.User{
		ID:          uid,
		Email:       normalizeEmail(email),
		Name:        strings.TrimSpace(name),
		PwdHash:     hash,
		Salt:        salt,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = normalizeEmail(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.Verify(password, u.Salt, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, email, ipHash)

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		return model.Tokens{}, model.User{}, err
	}
	u.LastLoginAt = now

	access, exp, err := s.issueAccessToken(u.ID, now)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
