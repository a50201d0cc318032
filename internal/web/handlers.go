package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/logging"
)

// previewRequest is the wire body for POST /api/imports/{entityType}/preview.
type previewRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// previewResponse wraps the preview result in the wire shape the batch
// driver expects: token at top level, summary nested under "preview".
type previewResponse struct {
	ImportToken string             `json:"importToken"`
	Preview     previewBody        `json:"preview"`
	Errors      []core.Diagnostic  `json:"errors"`
	Warnings    []core.Diagnostic  `json:"warnings"`
}

type previewBody struct {
	Summary core.PreviewSummary `json:"summary"`
}

type confirmRequest struct {
	ImportToken string `json:"importToken"`
}

type healthResponse struct {
	OK   bool      `json:"ok"`
	Time time.Time `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	respondJSON(w, http.StatusOK, healthResponse{OK: true, Time: time.Now().UTC()})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entity, ok := core.ParseEntityType(chi.URLParam(r, "entityType"))
	if !ok {
		s.respondError(w, r, errUnknownEntity(chi.URLParam(r, "entityType")), http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxContentSize+1))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if int64(len(body)) > s.maxContentSize {
		s.respondError(w, r, errContentTooLarge(s.maxContentSize), http.StatusRequestEntityTooLarge)
		return
	}

	var req previewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	logger := logging.FromContext(r.Context())
	result, err := s.service.Preview(r.Context(), entity, []byte(req.Content), req.Format)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	logger.Info("preview analyzed",
		"entity", entity,
		"rows", result.Summary.TotalRows,
		"valid", result.Summary.ValidRows,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)

	respondJSON(w, http.StatusOK, previewResponse{
		ImportToken: result.Token,
		Preview:     previewBody{Summary: result.Summary},
		Errors:      emptyIfNil(result.Errors),
		Warnings:    emptyIfNil(result.Warnings),
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	entity, ok := core.ParseEntityType(chi.URLParam(r, "entityType"))
	if !ok {
		s.respondError(w, r, errUnknownEntity(chi.URLParam(r, "entityType")), http.StatusNotFound)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.ImportToken == "" {
		s.respondError(w, r, errMissingToken, http.StatusBadRequest)
		return
	}

	summary, err := s.service.Confirm(r.Context(), entity, req.ImportToken)
	if err != nil {
		s.respondError(w, r, err, statusForConfirmError(err))
		return
	}

	logging.FromContext(r.Context()).Info("import confirmed",
		"entity", summary.Entity,
		"committed", summary.Committed,
	)
	respondJSON(w, http.StatusOK, summary)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// emptyIfNil keeps the wire contract: errors/warnings are arrays, not null.
func emptyIfNil(diags []core.Diagnostic) []core.Diagnostic {
	if diags == nil {
		return []core.Diagnostic{}
	}
	return diags
}
