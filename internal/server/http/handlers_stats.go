package httpserver

import (
	"net/http"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/convert"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	h, err := s.svc.Stats.History(r.Context(), userID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// handleWeekly summarizes the week containing ?date= (today by default).
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	anchor := clock.Today(s.clock)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := convert.ParseDate(v)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		anchor = d
	}
	week, err := s.svc.Stats.Weekly(r.Context(), userID, anchor)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}
