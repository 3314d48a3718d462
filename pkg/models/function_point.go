package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind discriminates the two encodings of a function point entry.
type EntryKind string

const (
	// EntryElementQuantity counts affected elements of one type.
	EntryElementQuantity EntryKind = "element_quantity"
	// EntryParameterSelection is the legacy encoding: the entry selects an
	// estimation parameter directly, with no element type or quantity. It
	// contributes the parameter's effective factor once, additively.
	EntryParameterSelection EntryKind = "parameter_selection"
)

// FunctionPointEntry records estimation input against a requirement.
// The kind is resolved at the repository boundary from which reference
// column is set, never inferred downstream.
type FunctionPointEntry struct {
	ID            uuid.UUID `json:"id"`
	RequirementID uuid.UUID `json:"requirement_id"`
	Kind          EntryKind `json:"kind"`

	// Set when Kind == EntryElementQuantity.
	ElementTypeID     int `json:"element_type_id,omitempty"`
	EstimatedQuantity int `json:"estimated_quantity"`

	// Set when Kind == EntryParameterSelection.
	ParameterID uuid.UUID `json:"parameter_id,omitempty"`

	// Delivered figures, entered after the fact. Informational only; they
	// do not feed the estimate.
	RealQuantity   *int     `json:"real_quantity,omitempty"`
	RealEffortDays *float64 `json:"real_effort_days,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
