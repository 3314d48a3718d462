package models

import (
	"time"

	"github.com/google/uuid"
)

// Requirement is a discrete unit of scope under a need.
type Requirement struct {
	ID        uuid.UUID `json:"id"`
	NeedID    uuid.UUID `json:"need_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
