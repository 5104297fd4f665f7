package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/pkg/response"
)

type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

// Checked in order. ErrInvalidCursor must come before ErrInvalidInput.
var errorMappings = []errorMapping{
	{custom_err.ErrInvalidCursor, http.StatusBadRequest, "invalid_cursor", "Cursor is malformed"},
	{custom_err.ErrInvalidInput, http.StatusBadRequest, "invalid_request", "Request is invalid"},
	{custom_err.ErrNotFound, http.StatusNotFound, "not_found", "Resource not found"},
	{custom_err.ErrVersionConflict, http.StatusConflict, "concurrent_update", "Transfer was modified concurrently, retry"},
	{custom_err.ErrStateConflict, http.StatusConflict, "invalid_state", "Operation not allowed in current state"},
	{custom_err.ErrBusinessRule, http.StatusUnprocessableEntity, "business_rule_violation", "Request violates a business rule"},
	{custom_err.ErrLockUnavailable, http.StatusServiceUnavailable, "lock_unavailable", "Transfer is being processed, retry shortly"},
}

func writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.kind) {
			continue
		}

		message := m.message
		var details map[string]any
		var detailed interface {
			error
			custom_err.Detailed
		}
		if errors.As(err, &detailed) {
			message = detailed.Error()
			details = detailed.Details()
		}

		if m.status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
			log.Warn("request rejected", slog.String("op", op), slog.String("error", err.Error()))
		} else {
			log.Info("request rejected", slog.String("op", op), slog.String("error", err.Error()))
		}
		response.WriteJSONErrorDetails(w, log, m.status, m.code, message, details)
		return
	}

	log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	response.WriteJSONError(w, log, http.StatusInternalServerError, "internal_error", "Internal error")
}
