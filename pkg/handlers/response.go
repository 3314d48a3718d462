package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// validationErrorBody carries the failing fields alongside the error code.
type validationErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// WriteServiceError maps service errors to HTTP responses. Unrecognized
// errors are logged and reported as 500 without leaking detail.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeOrLog(w, logger, http.StatusUnprocessableEntity, validationErrorBody{
			Error:   "validation_failed",
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		logOnFail(logger, ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found"))
	case errors.Is(err, apperrors.ErrConflict):
		logOnFail(logger, ErrorResponse(w, http.StatusConflict, "conflict", "Resource already exists"))
	case errors.Is(err, apperrors.ErrAINotConfigured):
		logOnFail(logger, ErrorResponse(w, http.StatusConflict, "ai_not_configured", "No AI endpoint is configured"))
	case errors.Is(err, apperrors.ErrCatalogUnavailable):
		logOnFail(logger, ErrorResponse(w, http.StatusServiceUnavailable, "catalog_unavailable", "Estimation catalog could not be loaded"))
	case errors.Is(err, apperrors.ErrRealEffortNotRecorded):
		logOnFail(logger, ErrorResponse(w, http.StatusConflict, "real_effort_not_recorded", "No real effort has been recorded"))
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		logOnFail(logger, ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"))
	}
}

func writeOrLog(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	logOnFail(logger, WriteJSON(w, status, body))
}

func logOnFail(logger *zap.Logger, err error) {
	if err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
