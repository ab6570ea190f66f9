package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Detail string `json:"detail" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Detail: msg}
}

// decode reads a JSON body of at most 10 MB into v.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// fail maps a service error to a response. notFound is the detail used for
// apperr.ErrNotFound.
func fail(w http.ResponseWriter, op string, err error, notFound string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(notFound))
	case errors.Is(err, apperr.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), apperr.ErrValidation.Error()+": ")
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(msg))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("Content changed"))
	case errors.Is(err, apperr.ErrGeneration):
		slog.Warn(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
