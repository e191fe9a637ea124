// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation marks caller input rejected before any I/O.
	ErrValidation = errors.New("validation")

	// ErrNoTemplate indicates the user has no saved daily template (or it is empty).
	ErrNoTemplate = errors.New("no template")

	// ErrInvalidRange indicates a date range whose end precedes its start.
	ErrInvalidRange = errors.New("end date is before start date")

	// ErrRangeTooLarge indicates a date range above the bulk apply cap.
	ErrRangeTooLarge = errors.New("date range too large")
)
