package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/services"
)

// catalogImportMaxBytes caps the YAML seed upload size.
const catalogImportMaxBytes = 1 << 20

// CatalogHandler handles estimation catalog requests: element types,
// parameter types, parameters and complexity factors.
type CatalogHandler struct {
	catalog    services.CatalogService
	extraction services.ExtractionService
	logger     *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog services.CatalogService, extraction services.ExtractionService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:    catalog,
		extraction: extraction,
		logger:     logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog/element-types", h.ListElementTypes)
	mux.HandleFunc("GET /api/catalog/parameters", h.ListParameters)
	mux.HandleFunc("PATCH /api/catalog/parameters/{id}/factors", h.UpdateFactors)
	mux.HandleFunc("POST /api/catalog/parameters/{id}/suggest-factor", h.SuggestFactor)
	mux.HandleFunc("PUT /api/catalog/complexity-factors", h.SetComplexityFactor)
	mux.HandleFunc("POST /api/catalog/import", h.Import)
}

// ParameterGroup is one parameter type with its parameters.
type ParameterGroup struct {
	Type       *models.ParameterType         `json:"type"`
	Parameters []*models.EstimationParameter `json:"parameters"`
}

// UpdateFactorsRequest is the request body for updating a parameter's factors.
type UpdateFactorsRequest struct {
	Factor   *float64 `json:"factor"`
	FactorAI *float64 `json:"factor_ai"`
}

// ListElementTypes handles GET /api/catalog/element-types.
func (h *CatalogHandler) ListElementTypes(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, snapshot.ElementTypes)
}

// ListParameters handles GET /api/catalog/parameters.
// Returns parameters grouped by type.
func (h *CatalogHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	groups := make(map[string]*ParameterGroup, len(snapshot.ParameterTypes))
	order := make([]string, 0, len(snapshot.ParameterTypes))
	for _, p := range snapshot.Parameters {
		pt := snapshot.ParameterTypes[p.ParameterTypeID]
		if pt == nil {
			continue
		}
		key := pt.ID.String()
		group, ok := groups[key]
		if !ok {
			group = &ParameterGroup{Type: pt}
			groups[key] = group
			order = append(order, key)
		}
		group.Parameters = append(group.Parameters, p)
	}

	out := make([]*ParameterGroup, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key])
	}
	writeOrLog(w, h.logger, http.StatusOK, out)
}

// UpdateFactors handles PATCH /api/catalog/parameters/{id}/factors.
func (h *CatalogHandler) UpdateFactors(w http.ResponseWriter, r *http.Request) {
	parameterID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateFactorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	if err := h.catalog.UpdateParameterFactors(r.Context(), parameterID, req.Factor, req.FactorAI); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuggestFactor handles POST /api/catalog/parameters/{id}/suggest-factor.
// Asks the configured model for a factor and stores it as factor_ai.
func (h *CatalogHandler) SuggestFactor(w http.ResponseWriter, r *http.Request) {
	parameterID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	factor, err := h.extraction.SuggestFactor(r.Context(), parameterID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	writeOrLog(w, h.logger, http.StatusOK, map[string]float64{"factor_ai": factor})
}

// SetComplexityFactor handles PUT /api/catalog/complexity-factors.
func (h *CatalogHandler) SetComplexityFactor(w http.ResponseWriter, r *http.Request) {
	var cf models.ComplexityFactor
	if err := json.NewDecoder(r.Body).Decode(&cf); err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"))
		return
	}

	if err := h.catalog.SetComplexityFactor(r.Context(), &cf); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/catalog/import.
// The request body is a YAML parameter seed.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, catalogImportMaxBytes))
	if err != nil {
		logOnFail(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to read request body"))
		return
	}

	count, err := h.catalog.ImportParameters(r.Context(), data)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Catalog import complete", zap.Int("parameters", count))
	writeOrLog(w, h.logger, http.StatusOK, map[string]int{"imported": count})
}
