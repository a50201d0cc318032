package web

// errors.go maps protocol errors onto the JSON error envelope. Technical
// details are logged server-side with the request ID; the client gets a
// stable machine-readable code plus a human-readable message.

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/logging"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var errMissingToken = errors.New("importToken is required")

func errUnknownEntity(name string) error {
	return fmt.Errorf("unknown entity type %q", name)
}

func errContentTooLarge(limit int64) error {
	return fmt.Errorf("content exceeds %d byte limit", limit)
}

// statusForConfirmError maps session-protocol errors to HTTP statuses.
func statusForConfirmError(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, core.ErrSessionConsumed):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionEntity):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionBlocked):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, core.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, core.ErrSessionConsumed):
		return "session_consumed"
	case errors.Is(err, core.ErrSessionEntity):
		return "session_entity_mismatch"
	case errors.Is(err, core.ErrSessionBlocked):
		return "session_blocked"
	default:
		return "internal"
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	code := errorCode(err)
	if status == http.StatusBadRequest {
		code = "bad_request"
	} else if status == http.StatusNotFound && code == "internal" {
		code = "not_found"
	} else if status == http.StatusServiceUnavailable {
		code = "backend_unavailable"
	} else if status == http.StatusUnprocessableEntity && code == "internal" {
		code = "invalid_content"
	} else if status == http.StatusRequestEntityTooLarge {
		code = "content_too_large"
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    code,
	})
}
