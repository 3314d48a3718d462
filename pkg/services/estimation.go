// Package services implements the estimation engine and its orchestration.
package services

import (
	"github.com/google/uuid"

	"github.com/estimaware/estima-engine/pkg/models"
)

// EstimateOptions tunes the effort formula.
type EstimateOptions struct {
	// AdditiveOnEmpty keeps flat additive parameters in the total when a
	// requirement has no function point entries. Off by default: an empty
	// requirement estimates to zero.
	AdditiveOnEmpty bool
}

// ParameterCatalog is the already-fetched weighting model the estimator
// computes against: the parameters, their types, and the id of the reserved
// Complexity type (uuid.Nil when the catalog has none).
type ParameterCatalog struct {
	Parameters       []*models.EstimationParameter
	ParameterTypes   map[uuid.UUID]*models.ParameterType
	ComplexityTypeID uuid.UUID
}

// multiplicativeParameters returns the parameters whose type multiplies
// element quantities. Parameters of the Complexity type are excluded: they
// only select per-element factors, they are not terms themselves.
func (c *ParameterCatalog) multiplicativeParameters() []*models.EstimationParameter {
	var out []*models.EstimationParameter
	for _, p := range c.Parameters {
		pt := c.ParameterTypes[p.ParameterTypeID]
		if pt == nil || !pt.MultipliesElements {
			continue
		}
		if c.ComplexityTypeID != uuid.Nil && p.ParameterTypeID == c.ComplexityTypeID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// additiveParameters returns the flat-contribution parameters.
func (c *ParameterCatalog) additiveParameters() []*models.EstimationParameter {
	var out []*models.EstimationParameter
	for _, p := range c.Parameters {
		pt := c.ParameterTypes[p.ParameterTypeID]
		if pt == nil || pt.MultipliesElements {
			continue
		}
		out = append(out, p)
	}
	return out
}

// parameterByID finds a catalog parameter, for legacy parameter-selection
// entries.
func (c *ParameterCatalog) parameterByID(id uuid.UUID) *models.EstimationParameter {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// EstimateRequirement computes the function point total and estimated effort
// for one requirement from its entries, the parameter catalog, and resolved
// per-element complexity factors (elementFactors defaults to 1 for missing
// element types).
//
// The effort formula, in workdays:
//
//	effort = Σ over element entries, multiplicative params
//	             (quantity × effectiveFactor × complexityFactor(element))
//	       + Σ over additive params (effectiveFactor)
//	       + Σ over legacy parameter-selection entries (effectiveFactor)
//
// A requirement with no entries short-circuits to zero; whether additive
// parameters still apply then is controlled by opts.AdditiveOnEmpty.
// Negative quantities are clamped to zero.
func EstimateRequirement(
	requirementID uuid.UUID,
	entries []*models.FunctionPointEntry,
	catalog *ParameterCatalog,
	elementFactors map[int]float64,
	opts EstimateOptions,
) models.RequirementEstimate {
	est := models.RequirementEstimate{RequirementID: requirementID}

	if len(entries) == 0 {
		if opts.AdditiveOnEmpty {
			for _, p := range catalog.additiveParameters() {
				est.EffortDays += p.EffectiveFactor()
			}
			est.EffortHours = est.EffortDays * models.HoursPerWorkday
		}
		return est
	}

	multiplicative := catalog.multiplicativeParameters()

	for _, entry := range entries {
		switch entry.Kind {
		case models.EntryElementQuantity:
			qty := entry.EstimatedQuantity
			if qty < 0 {
				qty = 0
			}
			est.FunctionPointTotal += qty

			factor, ok := elementFactors[entry.ElementTypeID]
			if !ok {
				factor = 1
			}
			for _, p := range multiplicative {
				est.EffortDays += float64(qty) * p.EffectiveFactor() * factor
			}

		case models.EntryParameterSelection:
			p := catalog.parameterByID(entry.ParameterID)
			if p == nil {
				continue
			}
			// A selected Complexity parameter is a selection, not a
			// term; it only drives per-element factors.
			if catalog.ComplexityTypeID != uuid.Nil && p.ParameterTypeID == catalog.ComplexityTypeID {
				continue
			}
			est.EffortDays += p.EffectiveFactor()
		}
	}

	for _, p := range catalog.additiveParameters() {
		est.EffortDays += p.EffectiveFactor()
	}

	est.EffortHours = est.EffortDays * models.HoursPerWorkday
	return est
}
