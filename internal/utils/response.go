package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

func WriteJSON(w http.ResponseWriter, logger *Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteError renders err as {"error": ..., "details": ...}. Errors that are not
// an *AppError are reported as a generic 500.
func WriteError(w http.ResponseWriter, logger *Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError("Internal server error")
		appErr.Cause = err
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", appErr.StatusCode, "code", appErr.Code, "error", appErr)
	} else {
		logger.Warn("Request rejected", "status", appErr.StatusCode, "code", appErr.Code, "error", appErr.Message)
	}

	WriteJSON(w, logger, appErr.StatusCode, models.ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}
