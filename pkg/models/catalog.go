package models

import "github.com/google/uuid"

// ElementType identifies one kind of affected element (table, form, report...).
// The catalog is immutable reference data seeded by migration.
type ElementType struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Seeded element type IDs. Kept stable so complexity factor rows and
// function point entries survive re-seeding.
const (
	ElementTables            = 1
	ElementTriggersProcs     = 2
	ElementAppInterfaces     = 3
	ElementForms             = 4
	ElementComplexRoutines   = 5
	ElementDBInterfaces      = 6
	ElementReports           = 7
	ElementComponents        = 8
	ElementScriptLogic       = 9
	ElementConfigTest        = 10
	ElementMobileDeployment  = 11
	ElementQA                = 12
	ElementDirectFunctionPts = 13
)

// ParameterType groups estimation parameters and decides how they enter the
// effort formula: types that multiply elements contribute per entry, scaled
// by quantity and complexity; the rest contribute a flat additive term.
type ParameterType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	// MultipliesElements marks the type as multiplicative. The Complexity
	// type itself sets this but is excluded from the multiplicative pass;
	// its parameters only select per-element factors.
	MultipliesElements bool `json:"multiplies_elements"`
}

// ComplexityTypeName is the reserved parameter type whose parameters select
// per-element complexity factors rather than contributing terms directly.
const ComplexityTypeName = "Complexity"

// EstimationParameter is one weighting parameter of the estimation model.
// Factor is the manually curated value; FactorAI is the model-suggested value
// and wins when present.
type EstimationParameter struct {
	ID              uuid.UUID `json:"id"`
	ParameterTypeID uuid.UUID `json:"parameter_type_id"`
	Name            string    `json:"name"`
	Factor          *float64  `json:"factor,omitempty"`
	FactorAI        *float64  `json:"factor_ai,omitempty"`
}

// EffectiveFactor resolves the factor to use in effort terms:
// FactorAI when present, else Factor, else 0.
func (p *EstimationParameter) EffectiveFactor() float64 {
	if p.FactorAI != nil {
		return *p.FactorAI
	}
	if p.Factor != nil {
		return *p.Factor
	}
	return 0
}

// ComplexityFactor is the multiplier applied to elements of one type under
// one complexity parameter. Unresolved pairs default to 1.
type ComplexityFactor struct {
	ElementTypeID int       `json:"element_type_id"`
	ParameterID   uuid.UUID `json:"parameter_id"`
	Factor        float64   `json:"factor"`
}
