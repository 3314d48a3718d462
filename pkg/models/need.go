package models

import (
	"time"

	"github.com/google/uuid"
)

// Need is a client requirement document attached to a project. Requirements
// are extracted from (or authored under) a need.
type Need struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Body         string    `json:"body"`
	ReferenceURL string    `json:"reference_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
