package services

import (
	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
)

// ComputeDeviation compares recorded real effort against the estimate.
// A nil or zero real effort means "not yet recorded" and returns
// apperrors.ErrRealEffortNotRecorded rather than a deviation against zero
// effort. When the estimate is zero the percentage is zero, never a
// division by zero. Positive values mean the actual work exceeded the
// estimate.
func ComputeDeviation(estimatedDays float64, realDays *float64) (*models.Deviation, error) {
	if realDays == nil || *realDays == 0 {
		return nil, apperrors.ErrRealEffortNotRecorded
	}

	dev := &models.Deviation{
		Days: *realDays - estimatedDays,
	}
	if estimatedDays != 0 {
		dev.Percent = dev.Days / estimatedDays * 100
	}
	dev.Hours = dev.Days * models.HoursPerWorkday

	return dev, nil
}
