package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/services"
)

// RequirementsHandler handles requirement and function point grid requests.
type RequirementsHandler struct {
	requirements services.RequirementService
	estimates    services.EstimateService
	logger       *zap.Logger
}

// NewRequirementsHandler creates a new requirements handler.
func NewRequirementsHandler(
	requirements services.RequirementService,
	estimates services.EstimateService,
	logger *zap.Logger,
) *RequirementsHandler {
	return &RequirementsHandler{
		requirements: requirements,
		estimates:    estimates,
		logger:       logger,
	}
}

// RegisterRoutes registers the requirements handler's routes on the given mux.
func (h *RequirementsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/needs/{nid}/requirements", h.ListByNeed)
	mux.HandleFunc("POST /api/needs/{nid}/requirements", h.Create)
	mux.HandleFunc("GET /api/requirements/{rid}", h.Get)
	mux.HandleFunc("PATCH /api/requirements/{rid}", h.Update)
	mux.HandleFunc("DELETE /api/requirements/{rid}", h.Delete)
	mux.HandleFunc("GET /api/requirements/{rid}/function-points", h.ListFunctionPoints)
	mux.HandleFunc("PUT /api/requirements/{rid}/function-points", h.ReplaceFunctionPoints)
	mux.HandleFunc("GET /api/requirements/{rid}/estimate", h.Estimate)
	mux.HandleFunc("PATCH /api/function-points/{eid}/real-figures", h.RecordRealFigures)
}

// ListByNeed handles GET /api/needs/{nid}/requirements.
func (h *RequirementsHandler) ListByNeed(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	reqs, err := h.requirements.ListByNeed(r.Context(), needID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, reqs)
}

// Create handles POST /api/needs/{nid}/requirements.
func (h *RequirementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	needID, ok := pathUUID(w, r, "nid", h.logger)
	if !ok {
		return
	}

	var input services.RequirementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	req, err := h.requirements.Create(r.Context(), needID, input)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusCreated, req)
}

// Get handles GET /api/requirements/{rid}.
func (h *RequirementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	req, err := h.requirements.Get(r.Context(), reqID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, req)
}

// Update handles PATCH /api/requirements/{rid}.
func (h *RequirementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	var input services.RequirementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	req, err := h.requirements.Update(r.Context(), reqID, input)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, req)
}

// Delete handles DELETE /api/requirements/{rid}.
func (h *RequirementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	if err := h.requirements.Delete(r.Context(), reqID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFunctionPoints handles GET /api/requirements/{rid}/function-points.
func (h *RequirementsHandler) ListFunctionPoints(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	entries, err := h.requirements.ListFunctionPoints(r.Context(), reqID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, entries)
}

// ReplaceFunctionPoints handles PUT /api/requirements/{rid}/function-points.
// The request body is the complete grid; entries not present are removed.
func (h *RequirementsHandler) ReplaceFunctionPoints(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	var inputs []services.FunctionPointInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	entries, err := h.requirements.ReplaceFunctionPoints(r.Context(), reqID, inputs)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, entries)
}

// RecordRealFigures handles PATCH /api/function-points/{eid}/real-figures.
func (h *RequirementsHandler) RecordRealFigures(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "eid", h.logger)
	if !ok {
		return
	}

	var input services.RealFiguresInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	if err := h.requirements.RecordRealFigures(r.Context(), entryID, input); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estimate handles GET /api/requirements/{rid}/estimate.
func (h *RequirementsHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	reqID, ok := pathUUID(w, r, "rid", h.logger)
	if !ok {
		return
	}

	estimate, err := h.estimates.ForRequirement(r.Context(), reqID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, estimate)
}
