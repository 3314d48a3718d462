package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/services"
)

// NeedsHandler handles need-related HTTP requests.
type NeedsHandler struct {
	needs      services.NeedService
	estimates  services.EstimateService
	extraction services.ExtractionService
	logger     *zap.Logger
}

// NewNeedsHandler creates a new needs handler.
func NewNeedsHandler(
	needs services.NeedService,
	estimates services.EstimateService,
	extraction services.ExtractionService,
	logger *zap.Logger,
) *NeedsHandler {
	return &NeedsHandler{
		needs:      needs,
		estimates:  estimates,
		extraction: extraction,
		logger:     logger,
	}
}

// RegisterRoutes registers the needs handler's routes on the given mux.
func (h *NeedsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects/{pid}/needs", h.ListByProject)
	mux.HandleFunc("POST /api/projects/{pid}/needs", h.Create)
	mux.HandleFunc("GET /api/needs/{nid}", h.Get)
	mux.HandleFunc("PATCH /api/needs/{nid}", h.Update)
	mux.HandleFunc("DELETE /api/needs/{nid}", h.Delete)
	mux.HandleFunc("GET /api/needs/{nid}/estimate", h.Estimate)
	mux.HandleFunc("POST /api/needs/{nid}/extract-requirements", h.ExtractRequirements)
}

// ListByProject handles GET /api/projects/{pid}/needs.
func (h *NeedsHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	needs, err := h.needs.ListByProject(r.Context(), projectID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, needs)
}

// Create handles POST /api/projects/{pid}/needs.
func (h *NeedsHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var input services.NeedInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	need, err := h.needs.Create(r.Context(), projectID, input)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusCreated, need)
}

// Get handles GET /api/needs/{nid}.
func (h *NeedsHandler) Get(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	need, err := h.needs.Get(r.Context(), needID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, need)
}

// Update handles PATCH /api/needs/{nid}.
func (h *NeedsHandler) Update(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	var input services.NeedInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	need, err := h.needs.Update(r.Context(), needID, input)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, need)
}

// Delete handles DELETE /api/needs/{nid}.
func (h *NeedsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	if err := h.needs.Delete(r.Context(), needID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estimate handles GET /api/needs/{nid}/estimate.
func (h *NeedsHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	estimate, err := h.estimates.ForNeed(r.Context(), needID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, estimate)
}

// ExtractRequirements handles POST /api/needs/{nid}/extract-requirements.
// Runs the AI extraction pipeline over the need body and returns the
// requirements it created.
func (h *NeedsHandler) ExtractRequirements(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	reqs, err := h.extraction.ExtractRequirements(r.Context(), needID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Requirements extracted",
		zap.String("need_id", needID.String()),
		zap.Int("count", len(reqs)))
	writeOrLog(w, h.logger, http.StatusCreated, reqs)
}
