package httpserver

import (
	"fmt"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/convert"
	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
)

type addSupplementRequest struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	TimeCategory string `json:"timeCategory"`
}

type fromLibraryRequest struct {
	ItemID       string `json:"itemId"`
	TimeCategory string `json:"timeCategory"`
}

type putDayRequest struct {
	Supplements []convert.SupplementIn `json:"supplements"`
}

type supplementResponse struct {
	Success    bool             `json:"success"`
	Supplement model.Supplement `json:"supplement"`
}

// userAndDate resolves the caller and the {date} path variable.
func userAndDate(r *http.Request) (uuid.UUID, civil.Date, error) {
	id, ok := UserIDFromCtx(r.Context())
	if !ok {
		return uuid.Nil, civil.Date{}, errs.ErrUnauthorized
	}
	date, err := convert.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		return uuid.Nil, civil.Date{}, err
	}
	return id, date, nil
}

func parseCategory(s string) (model.TimeCategory, error) {
	cat := model.TimeCategory(s)
	if !cat.Valid() {
		return "", fmt.Errorf("%w: unknown time category %q", errs.ErrValidation, s)
	}
	return cat, nil
}

// handleListDays returns the dense window [from, to]; both default to today.
func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	today := clock.Today(s.clock)
	from, to := today, today
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = convert.ParseDate(v); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = convert.ParseDate(v); err != nil {
			s.writeErr(w, r, err)
			return
		}
	}
	days, err := s.svc.Days.Window(r.Context(), userID, from, to)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToWireDays(days))
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	day, err := s.svc.Days.Get(r.Context(), userID, date)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToWireDay(day))
}

// handlePutDay replaces the full list of a day.
func (s *Server) handlePutDay(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req putDayRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	supps, err := convert.FromWireSupplements(req.Supplements, s.clock.Now())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.Days.Replace(r.Context(), userID, date, supps); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleAddSupplement(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req addSupplementRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	cat, err := parseCategory(req.TimeCategory)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	supp, err := s.svc.Days.AddSupplement(r.Context(), userID, date, req.Name, req.Dosage, cat)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplementResponse{Success: true, Supplement: supp})
}

func (s *Server) handleAddFromLibrary(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var req fromLibraryRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	cat, err := parseCategory(req.TimeCategory)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	supp, err := s.svc.Days.AddFromLibrary(r.Context(), userID, date, req.ItemID, cat)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplementResponse{Success: true, Supplement: supp})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	id, err := convert.ParseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	supp, err := s.svc.Days.Toggle(r.Context(), userID, date, id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplementResponse{Success: true, Supplement: supp})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	id, err := convert.ParseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.Days.Remove(r.Context(), userID, date, id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}
