package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/and161185/supp-tracker/internal/errs"
)

// Result is the envelope of single operations.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) { writeJSON(w, http.StatusOK, Result{Success: true}) }

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Result{Success: false, Error: msg})
}

// writeErr maps service errors to a status and a caller-facing message.
// Internal details go to the log only.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", errField(r, err)...)
	}
	writeFailure(w, status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInvalidRange),
		errors.Is(err, errs.ErrRangeTooLarge):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "too many attempts, try again later"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "an account with this email already exists"
	case errors.Is(err, errs.ErrNoTemplate):
		return http.StatusConflict, "no daily template saved"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "operation failed, please try again"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", errs.ErrValidation)
	}
	return nil
}
