package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/models"
)

func TestFactorResolver_NilParameterMeansNeutral(t *testing.T) {
	resolver := NewFactorResolver(&mockCatalogRepository{}, zap.NewNop())

	factors, err := resolver.Resolve(context.Background(), nil, []int{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{1: 1, 2: 1, 3: 1}, factors)
}

func TestFactorResolver_FactorAIShortCircuits(t *testing.T) {
	repo := &mockCatalogRepository{
		factors: []*models.ComplexityFactor{
			{ParameterID: uuid.New(), ElementTypeID: 1, Factor: 5},
		},
	}
	resolver := NewFactorResolver(repo, zap.NewNop())

	param := &models.EstimationParameter{ID: uuid.New(), FactorAI: f64(2.5), Factor: f64(9)}
	factors, err := resolver.Resolve(context.Background(), param, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{1: 2.5, 2: 2.5}, factors)
}

func TestFactorResolver_PerElementFactorsFromBatch(t *testing.T) {
	paramID := uuid.New()
	repo := &mockCatalogRepository{
		factors: []*models.ComplexityFactor{
			{ParameterID: paramID, ElementTypeID: 1, Factor: 3},
			{ParameterID: paramID, ElementTypeID: 2, Factor: 0.5},
		},
	}
	resolver := NewFactorResolver(repo, zap.NewNop())

	param := &models.EstimationParameter{ID: paramID, Factor: f64(9)}
	factors, err := resolver.Resolve(context.Background(), param, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{1: 3, 2: 0.5}, factors)
}

func TestFactorResolver_MissRowFallsBackToParameterFactor(t *testing.T) {
	paramID := uuid.New()
	repo := &mockCatalogRepository{
		factors: []*models.ComplexityFactor{
			{ParameterID: paramID, ElementTypeID: 1, Factor: 3},
		},
	}
	resolver := NewFactorResolver(repo, zap.NewNop())

	param := &models.EstimationParameter{ID: paramID, Factor: f64(2)}
	factors, err := resolver.Resolve(context.Background(), param, []int{1, 7})
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{1: 3, 7: 2}, factors)
}

func TestFactorResolver_NoFactorsAtAllDefaultsToOne(t *testing.T) {
	resolver := NewFactorResolver(&mockCatalogRepository{}, zap.NewNop())

	param := &models.EstimationParameter{ID: uuid.New()}
	factors, err := resolver.Resolve(context.Background(), param, []int{4})
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{4: 1}, factors)
}

func TestFactorResolver_EmptyElementList(t *testing.T) {
	resolver := NewFactorResolver(&mockCatalogRepository{}, zap.NewNop())

	factors, err := resolver.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, factors)
}
