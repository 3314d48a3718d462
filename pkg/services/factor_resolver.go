package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/repositories"
)

// FactorResolver resolves the complexity multiplier per affected element
// type for a selected complexity parameter.
type FactorResolver struct {
	repo   repositories.CatalogRepository
	logger *zap.Logger
}

// NewFactorResolver creates a new factor resolver.
func NewFactorResolver(repo repositories.CatalogRepository, logger *zap.Logger) *FactorResolver {
	return &FactorResolver{
		repo:   repo,
		logger: logger.Named("factors"),
	}
}

// Resolve returns the complexity multiplier for each requested element type.
// Resolution order per element: the parameter's AI-suggested factor; the
// batched per-element lookup; a single per-element lookup for batch misses;
// the parameter's curated factor; 1. The batch query keeps this a single
// round trip for the common case instead of one query per element.
func (r *FactorResolver) Resolve(
	ctx context.Context,
	complexity *models.EstimationParameter,
	elementTypeIDs []int,
) (map[int]float64, error) {
	factors := make(map[int]float64, len(elementTypeIDs))
	if len(elementTypeIDs) == 0 {
		return factors, nil
	}

	// No complexity parameter selected: everything multiplies by 1.
	if complexity == nil {
		for _, id := range elementTypeIDs {
			factors[id] = 1
		}
		return factors, nil
	}

	if complexity.FactorAI != nil {
		for _, id := range elementTypeIDs {
			factors[id] = *complexity.FactorAI
		}
		return factors, nil
	}

	batch, err := r.repo.GetComplexityFactors(ctx, complexity.ID, elementTypeIDs)
	if err != nil {
		return nil, err
	}
	byElement := make(map[int]float64, len(batch))
	for _, cf := range batch {
		byElement[cf.ElementTypeID] = cf.Factor
	}

	fallback := float64(1)
	if complexity.Factor != nil {
		fallback = *complexity.Factor
	}

	for _, id := range elementTypeIDs {
		if f, ok := byElement[id]; ok {
			factors[id] = f
			continue
		}

		cf, err := r.repo.GetComplexityFactor(ctx, complexity.ID, id)
		switch {
		case err == nil:
			factors[id] = cf.Factor
		case errors.Is(err, apperrors.ErrNotFound):
			factors[id] = fallback
		default:
			r.logger.Warn("Complexity factor lookup failed, using fallback",
				zap.Int("element_type_id", id),
				zap.Error(err))
			factors[id] = fallback
		}
	}

	return factors, nil
}
