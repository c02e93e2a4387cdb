package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/printdesk/internal/input"
	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/quotes"
	"github.com/Simplici0/printdesk/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeServiceError maps domain errors to HTTP statuses. Anything unexpected
// is logged and reported as a 500 without details.
func (s *server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var violations input.Violations
	switch {
	case errors.As(err, &violations):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: violations})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, quotes.ErrQuoteFrozen),
		errors.Is(err, quotes.ErrAlreadyApproved),
		errors.Is(err, quotes.ErrOrderCompleted),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, quotes.ErrUnknownFilament):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
