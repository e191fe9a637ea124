package httpserver

import (
	"net/http"

	"github.com/and161185/supp-tracker/internal/convert"
	"github.com/and161185/supp-tracker/internal/model"
)

type saveTemplateRequest struct {
	Supplements []convert.SupplementIn `json:"supplements"`
}

type templateResponse struct {
	Success bool `json:"success"`
	convert.TemplateOut
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	t, err := s.svc.Templates.Get(r.Context(), userID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Success: true, TemplateOut: convert.ToWireTemplate(t)})
}

// handleSaveTemplate overwrites the template; per-instance fields are dropped by the service.
func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req saveTemplateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	supps, err := convert.FromWireSupplements(req.Supplements, s.clock.Now())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.Templates.Save(r.Context(), userID, supps); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	if err := s.svc.Templates.Delete(r.Context(), userID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleTemplateFromDay(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	t, err := s.svc.Templates.SaveFromDay(r.Context(), userID, date)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Success: true, TemplateOut: convert.ToWireTemplate(t)})
}

func (s *Server) handleApplyDate(w http.ResponseWriter, r *http.Request) {
	userID, date, err := userAndDate(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.svc.Templates.ApplyToDate(r.Context(), userID, date); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}

// handleApplyRange applies the template to every date of the range and
// re-reads the caller's displayed window from the store.
func (s *Server) handleApplyRange(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var in convert.RangeIn
	if err := decodeBody(w, r, &in); err != nil {
		s.writeErr(w, r, err)
		return
	}
	req, err := convert.FromWireRange(in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	res, err := s.svc.Templates.ApplyRange(r.Context(), userID, req.Start, req.End)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	var window []model.DayData
	if req.HasWindow {
		window, err = s.svc.Days.Window(r.Context(), userID, req.WindowFrom, req.WindowTo)
		if err != nil {
			// the writes already happened; report the tally without the window
			s.log.Warn("reload window after range apply", errField(r, err)...)
			window = nil
		}
	}
	writeJSON(w, http.StatusOK, convert.ToWireRange(res, req, window))
}
