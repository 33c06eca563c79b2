package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/learnanything/practice-backend/internal/domain"
)

// Conflict codes distinguish the 409 variants for clients.
const (
	codeSessionClosed = "SESSION_CLOSED"
	codeOutOfOrder    = "OUT_OF_ORDER"
	codeBusy          = "BUSY"
	codeNotReady      = "NOT_READY"
	codeConflict      = "CONFLICT"
)

type errorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code,omitempty"`
	Fields []fieldResponse `json:"fields,omitempty"`
}

type fieldResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// handleServiceError maps domain errors onto HTTP status codes. Conflicting
// transitions all map to 409 and are told apart by the code field.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		resp := errorResponse{Error: "validation failed"}
		for _, fe := range vErr.Errors {
			resp.Fields = append(resp.Fields, fieldResponse{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrEmptyDeck):
		writeError(w, http.StatusUnprocessableEntity, "deck has no cards to practice")
	case errors.Is(err, domain.ErrSessionClosed):
		writeErrorCode(w, http.StatusConflict, codeSessionClosed, "session is closed")
	case errors.Is(err, domain.ErrOutOfOrder):
		writeErrorCode(w, http.StatusConflict, codeOutOfOrder, "answer does not match the current card")
	case errors.Is(err, domain.ErrBusy):
		writeErrorCode(w, http.StatusConflict, codeBusy, "another answer is in flight")
	case errors.Is(err, domain.ErrNotReady):
		writeErrorCode(w, http.StatusConflict, codeNotReady, "session summary not available yet")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeErrorCode(w, http.StatusConflict, codeConflict, "conflict")
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
