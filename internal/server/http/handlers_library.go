package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/and161185/supp-tracker/internal/model"
)

type libraryItemRequest struct {
	Name          string `json:"name"`
	DefaultDosage string `json:"defaultDosage"`
	Category      string `json:"category"`
}

type libraryItemResponse struct {
	Success bool              `json:"success"`
	Item    model.LibraryItem `json:"item"`
}

// handleListLibrary lists the library, filtered by ?q= when present.
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var (
		items []model.LibraryItem
		err   error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		items, err = s.svc.Library.Search(r.Context(), userID, q)
	} else {
		items, err = s.svc.Library.List(r.Context(), userID)
	}
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if items == nil {
		items = []model.LibraryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req libraryItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	item, err := s.svc.Library.Add(r.Context(), userID, model.LibraryItem{
		Name:          req.Name,
		DefaultDosage: req.DefaultDosage,
		Category:      req.Category,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, libraryItemResponse{Success: true, Item: item})
}

func (s *Server) handleUpdateLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req libraryItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	err := s.svc.Library.Update(r.Context(), userID, model.LibraryItem{
		ID:            mux.Vars(r)["id"],
		Name:          req.Name,
		DefaultDosage: req.DefaultDosage,
		Category:      req.Category,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	if err := s.svc.Library.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeOK(w)
}
