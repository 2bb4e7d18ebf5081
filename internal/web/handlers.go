package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/logging"
)

// handleUpload ingests a CSV of card identifiers and responds with the
// persisted list: {id, name, cards[]}.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "invalid file type, expected .csv")
		return
	}

	logging.FromContext(r.Context()).Info("upload received",
		"filename", header.Filename,
		"size", header.Size,
	)

	list, err := s.service.Upload(r.Context(), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleGetCardList returns a persisted list by id. A missing list is a 404
// with a distinct "not found" message, never a generic backend error.
func (s *Server) handleGetCardList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing list id")
		return
	}

	list, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// renameRequest is the PATCH body for list rename.
type renameRequest struct {
	Name *string `json:"name"`
}

// handleRenameCardList updates a list's name. Repeating the same rename is
// observably a no-op.
func (s *Server) handleRenameCardList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing list id")
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name not provided")
		return
	}

	if err := s.service.Rename(r.Context(), id, *req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "card list name updated successfully",
	})
}

// handleGetLocalIP returns a LAN-reachable address for building share
// links. Resolution is best effort and never fails from the caller's
// perspective.
func (s *Server) handleGetLocalIP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ip": s.resolver.Resolve()})
}

// handleHealth reports service and store health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	status := http.StatusOK
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("store health check failed", "error", err)
		dbStatus = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if dbStatus != "healthy" {
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]string{
		"status":   overall,
		"database": dbStatus,
	})
}
