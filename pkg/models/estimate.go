package models

import "github.com/google/uuid"

// HoursPerWorkday is the fixed workday-to-hours conversion.
const HoursPerWorkday = 8

// RequirementEstimate is the computed effort for one requirement.
type RequirementEstimate struct {
	RequirementID      uuid.UUID `json:"requirement_id"`
	FunctionPointTotal int       `json:"function_point_total"`
	EffortDays         float64   `json:"effort_days"`
	EffortHours        float64   `json:"effort_hours"`
}

// NeedEstimate rolls requirement estimates up to one need.
type NeedEstimate struct {
	NeedID             uuid.UUID             `json:"need_id"`
	Name               string                `json:"name"`
	FunctionPointTotal int                   `json:"function_point_total"`
	EffortDays         float64               `json:"effort_days"`
	EffortHours        float64               `json:"effort_hours"`
	Complete           bool                  `json:"complete"`
	Requirements       []RequirementEstimate `json:"requirements,omitempty"`
}

// ProjectEstimate rolls need estimates up to the project, with the deviation
// against recorded real effort when one exists.
type ProjectEstimate struct {
	ProjectID          uuid.UUID      `json:"project_id"`
	FunctionPointTotal int            `json:"function_point_total"`
	EffortDays         float64        `json:"effort_days"`
	EffortHours        float64        `json:"effort_hours"`
	Needs              []NeedEstimate `json:"needs"`
	Deviation          *Deviation     `json:"deviation,omitempty"`

	// CatalogUnavailable is set when the parameter catalog could not be
	// loaded: effort figures degrade to zero instead of failing the
	// whole view, and the condition is surfaced here.
	CatalogUnavailable bool `json:"catalog_unavailable,omitempty"`
}

// Deviation compares recorded real effort against the estimate.
// Positive values mean the actual work exceeded the estimate.
type Deviation struct {
	Days    float64 `json:"days"`
	Percent float64 `json:"percent"`
	Hours   float64 `json:"hours"`
}
