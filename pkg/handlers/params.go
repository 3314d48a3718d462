package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pathUUID parses a UUID path value, writing a 400 response on failure.
// The bool reports whether the handler should continue.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		logOnFail(logger, ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}
