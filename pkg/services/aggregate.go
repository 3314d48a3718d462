package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/estimaware/estima-engine/pkg/models"
)

// AggregateNeed rolls per-requirement estimates up to one need. A need is
// complete when it has at least one requirement and every requirement has a
// positive function point total.
func AggregateNeed(needID uuid.UUID, name string, requirements []models.RequirementEstimate) models.NeedEstimate {
	est := models.NeedEstimate{
		NeedID:       needID,
		Name:         name,
		Complete:     len(requirements) > 0,
		Requirements: requirements,
	}

	for _, r := range requirements {
		est.FunctionPointTotal += r.FunctionPointTotal
		est.EffortDays += r.EffortDays
		if r.FunctionPointTotal <= 0 {
			est.Complete = false
		}
	}

	est.EffortHours = est.EffortDays * models.HoursPerWorkday
	return est
}

// AggregateProject rolls need estimates up to the project grand total and
// orders needs for display: complete needs first, then descending effort.
// The ordering is presentation policy; totals do not depend on it.
func AggregateProject(projectID uuid.UUID, needs []models.NeedEstimate) models.ProjectEstimate {
	est := models.ProjectEstimate{
		ProjectID: projectID,
		Needs:     needs,
	}

	for _, n := range needs {
		est.FunctionPointTotal += n.FunctionPointTotal
		est.EffortDays += n.EffortDays
	}

	est.EffortHours = est.EffortDays * models.HoursPerWorkday
	SortNeedEstimates(est.Needs)
	return est
}

// SortNeedEstimates orders needs complete-first, then by descending effort.
func SortNeedEstimates(needs []models.NeedEstimate) {
	sort.SliceStable(needs, func(i, j int) bool {
		if needs[i].Complete != needs[j].Complete {
			return needs[i].Complete
		}
		return needs[i].EffortDays > needs[j].EffortDays
	})
}
