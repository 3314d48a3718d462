package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/repositories"
)

// EstimateService computes effort estimates at requirement, need and project
// granularity.
type EstimateService interface {
	ForRequirement(ctx context.Context, requirementID uuid.UUID) (*models.RequirementEstimate, error)
	ForNeed(ctx context.Context, needID uuid.UUID) (*models.NeedEstimate, error)
	ForProject(ctx context.Context, projectID uuid.UUID) (*models.ProjectEstimate, error)
}

// estimateService implements EstimateService.
type estimateService struct {
	catalog        CatalogService
	factors        *FactorResolver
	projects       repositories.ProjectRepository
	needs          repositories.NeedRepository
	requirements   repositories.RequirementRepository
	functionPoints repositories.FunctionPointRepository
	opts           EstimateOptions
	logger         *zap.Logger
}

// NewEstimateService creates a new estimate service.
func NewEstimateService(
	catalog CatalogService,
	factors *FactorResolver,
	projects repositories.ProjectRepository,
	needs repositories.NeedRepository,
	requirements repositories.RequirementRepository,
	functionPoints repositories.FunctionPointRepository,
	opts EstimateOptions,
	logger *zap.Logger,
) EstimateService {
	return &estimateService{
		catalog:        catalog,
		factors:        factors,
		projects:       projects,
		needs:          needs,
		requirements:   requirements,
		functionPoints: functionPoints,
		opts:           opts,
		logger:         logger.Named("estimate"),
	}
}

// ForRequirement computes the estimate for a single requirement.
func (s *estimateService) ForRequirement(ctx context.Context, requirementID uuid.UUID) (*models.RequirementEstimate, error) {
	req, err := s.requirements.Get(ctx, requirementID)
	if err != nil {
		return nil, err
	}

	need, err := s.needs.Get(ctx, req.NeedID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.Get(ctx, need.ProjectID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.functionPoints.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}

	elementFactors, err := s.resolveFactors(ctx, snapshot, project, entriesElementTypes(entries))
	if err != nil {
		return nil, err
	}

	est := EstimateRequirement(requirementID, entries, snapshot.ParameterCatalog(), elementFactors, s.opts)
	return &est, nil
}

// ForNeed computes the rollup for one need, with per-requirement detail.
func (s *estimateService) ForNeed(ctx context.Context, needID uuid.UUID) (*models.NeedEstimate, error) {
	need, err := s.needs.Get(ctx, needID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.Get(ctx, need.ProjectID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	est, err := s.estimateNeed(ctx, snapshot, project, need)
	if err != nil {
		return nil, err
	}

	return est, nil
}

// ForProject computes the grand total with needs ordered for display and the
// deviation against recorded real effort. When the parameter catalog cannot
// be loaded the estimate degrades to zero instead of failing; the condition
// is flagged on the result.
func (s *estimateService) ForProject(ctx context.Context, projectID uuid.UUID) (*models.ProjectEstimate, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrCatalogUnavailable) {
			s.logger.Warn("Catalog unavailable, degrading project estimate to zero",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
			return &models.ProjectEstimate{
				ProjectID:          projectID,
				CatalogUnavailable: true,
			}, nil
		}
		return nil, err
	}

	needs, err := s.needs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	needEstimates := make([]models.NeedEstimate, 0, len(needs))
	for _, need := range needs {
		est, err := s.estimateNeed(ctx, snapshot, project, need)
		if err != nil {
			return nil, err
		}
		needEstimates = append(needEstimates, *est)
	}

	projectEst := AggregateProject(projectID, needEstimates)

	deviation, err := ComputeDeviation(projectEst.EffortDays, project.RealEffortDays)
	switch {
	case err == nil:
		projectEst.Deviation = deviation
	case errors.Is(err, apperrors.ErrRealEffortNotRecorded):
		// Nothing recorded yet; the estimate stands alone.
	default:
		return nil, err
	}

	return &projectEst, nil
}

// estimateNeed rolls up all requirements of one need. Entries for the whole
// need are fetched in one query and grouped per requirement.
func (s *estimateService) estimateNeed(
	ctx context.Context,
	snapshot *CatalogSnapshot,
	project *models.Project,
	need *models.Need,
) (*models.NeedEstimate, error) {
	reqs, err := s.requirements.ListByNeed(ctx, need.ID)
	if err != nil {
		return nil, err
	}

	entriesByReq, err := s.functionPoints.ListByNeed(ctx, need.ID)
	if err != nil {
		return nil, err
	}

	elementTypeIDs := make(map[int]struct{})
	for _, entries := range entriesByReq {
		for _, id := range entriesElementTypes(entries) {
			elementTypeIDs[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(elementTypeIDs))
	for id := range elementTypeIDs {
		ids = append(ids, id)
	}

	elementFactors, err := s.resolveFactors(ctx, snapshot, project, ids)
	if err != nil {
		return nil, err
	}

	catalog := snapshot.ParameterCatalog()
	reqEstimates := make([]models.RequirementEstimate, 0, len(reqs))
	for _, req := range reqs {
		est := EstimateRequirement(req.ID, entriesByReq[req.ID], catalog, elementFactors, s.opts)
		reqEstimates = append(reqEstimates, est)
	}

	est := AggregateNeed(need.ID, need.Name, reqEstimates)
	return &est, nil
}

// resolveFactors resolves per-element complexity multipliers under the
// project's selected complexity parameter.
func (s *estimateService) resolveFactors(
	ctx context.Context,
	snapshot *CatalogSnapshot,
	project *models.Project,
	elementTypeIDs []int,
) (map[int]float64, error) {
	var complexity *models.EstimationParameter
	if project.ComplexityParameterID != nil {
		complexity = snapshot.ParameterByID(*project.ComplexityParameterID)
		if complexity == nil {
			return nil, fmt.Errorf("project references unknown complexity parameter %s", *project.ComplexityParameterID)
		}
	}

	return s.factors.Resolve(ctx, complexity, elementTypeIDs)
}

// entriesElementTypes collects the distinct element type ids referenced by
// element-quantity entries.
func entriesElementTypes(entries []*models.FunctionPointEntry) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, e := range entries {
		if e.Kind != models.EntryElementQuantity {
			continue
		}
		if _, ok := seen[e.ElementTypeID]; ok {
			continue
		}
		seen[e.ElementTypeID] = struct{}{}
		ids = append(ids, e.ElementTypeID)
	}
	return ids
}

// Ensure estimateService implements EstimateService at compile time.
var _ EstimateService = (*estimateService)(nil)
