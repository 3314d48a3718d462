package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/services"
)

func catalogMux(catalog *mockCatalogService, extraction *mockExtractionService) *http.ServeMux {
	mux := http.NewServeMux()
	NewCatalogHandler(catalog, extraction, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func catalogSnapshot() *services.CatalogSnapshot {
	typeID := uuid.New()
	return &services.CatalogSnapshot{
		ElementTypes: []*models.ElementType{
			{ID: models.ElementTables, Label: "Tables"},
		},
		ParameterTypes: map[uuid.UUID]*models.ParameterType{
			typeID: {ID: typeID, Name: "Documentation"},
		},
		Parameters: []*models.EstimationParameter{
			{ID: uuid.New(), ParameterTypeID: typeID, Name: "Full"},
		},
	}
}

func TestCatalogHandler_ListElementTypes(t *testing.T) {
	mux := catalogMux(&mockCatalogService{snapshot: catalogSnapshot()}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/element-types", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []*models.ElementType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Tables", got[0].Label)
}

func TestCatalogHandler_ListParameters_Grouped(t *testing.T) {
	mux := catalogMux(&mockCatalogService{snapshot: catalogSnapshot()}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/parameters", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []*ParameterGroup
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Documentation", got[0].Type.Name)
	assert.Len(t, got[0].Parameters, 1)
}

func TestCatalogHandler_CatalogUnavailable(t *testing.T) {
	mux := catalogMux(&mockCatalogService{err: apperrors.ErrCatalogUnavailable}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/parameters", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCatalogHandler_UpdateFactors(t *testing.T) {
	mux := catalogMux(&mockCatalogService{}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/catalog/parameters/"+uuid.NewString()+"/factors",
		strings.NewReader(`{"factor": 2.0, "factor_ai": null}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCatalogHandler_SuggestFactor(t *testing.T) {
	mux := catalogMux(&mockCatalogService{}, &mockExtractionService{factor: 1.75})

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/parameters/"+uuid.NewString()+"/suggest-factor", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.InDelta(t, 1.75, got["factor_ai"], 1e-9)
}

func TestCatalogHandler_SetComplexityFactor(t *testing.T) {
	mux := catalogMux(&mockCatalogService{}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodPut, "/api/catalog/complexity-factors",
		strings.NewReader(`{"element_type_id": 1, "parameter_id": "`+uuid.NewString()+`", "factor": 2.5}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCatalogHandler_Import(t *testing.T) {
	mux := catalogMux(&mockCatalogService{imported: 7}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import",
		strings.NewReader("parameter_types:\n  - name: Complexity\n"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 7, got["imported"])
}

func TestCatalogHandler_Import_Invalid(t *testing.T) {
	mux := catalogMux(&mockCatalogService{err: apperrors.NewValidation("yaml")}, &mockExtractionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/import", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
