// Package models contains domain types for estima-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the top-level estimation aggregate. It owns Needs, which own
// Requirements, which own FunctionPointEntries.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// RealEffortDays is the delivered effort recorded after the fact,
	// in workdays. Nil (or zero) means not yet recorded; deviation is
	// not computed in that case.
	RealEffortDays *float64 `json:"real_effort_days,omitempty"`

	// ComplexityParameterID selects which Complexity parameter drives the
	// per-element multipliers for this project. Nil means all elements
	// multiply by 1.
	ComplexityParameterID *uuid.UUID `json:"complexity_parameter_id,omitempty"`
}
