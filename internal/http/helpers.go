package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"subtracker/internal/core"
	"subtracker/internal/services"
	"subtracker/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps service and domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateCategory),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrNotCancelled):
		writeError(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyName,
		core.ErrNameTooLong,
		core.ErrEmptyColor,
		core.ErrInvalidCurrency,
		core.ErrInvalidCycle,
		core.ErrInvalidCustomDays,
		core.ErrMissingStartDate,
		core.ErrHistoryOrder,
		core.ErrInvalidDate,
		services.ErrBuiltinCategory,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
