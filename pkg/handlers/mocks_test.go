package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/services"
)

// mockProjectService returns canned values per method.
type mockProjectService struct {
	project  *models.Project
	projects []*models.Project
	err      error

	realEffortDays float64
}

func (m *mockProjectService) Create(ctx context.Context, name string) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) List(ctx context.Context) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.projects, nil
}

func (m *mockProjectService) Update(ctx context.Context, id uuid.UUID, name string, complexityParameterID *uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error {
	m.realEffortDays = days
	return m.err
}

func (m *mockProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.err
}

// mockEstimateService returns canned estimates.
type mockEstimateService struct {
	requirement *models.RequirementEstimate
	need        *models.NeedEstimate
	project     *models.ProjectEstimate
	err         error
}

func (m *mockEstimateService) ForRequirement(ctx context.Context, id uuid.UUID) (*models.RequirementEstimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirement, nil
}

func (m *mockEstimateService) ForNeed(ctx context.Context, id uuid.UUID) (*models.NeedEstimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.need, nil
}

func (m *mockEstimateService) ForProject(ctx context.Context, id uuid.UUID) (*models.ProjectEstimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

// mockNeedService returns canned needs.
type mockNeedService struct {
	need  *models.Need
	needs []*models.Need
	err   error
}

func (m *mockNeedService) Create(ctx context.Context, projectID uuid.UUID, input services.NeedInput) (*models.Need, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.need, nil
}

func (m *mockNeedService) Get(ctx context.Context, id uuid.UUID) (*models.Need, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.need, nil
}

func (m *mockNeedService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.needs, nil
}

func (m *mockNeedService) Update(ctx context.Context, id uuid.UUID, input services.NeedInput) (*models.Need, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.need, nil
}

func (m *mockNeedService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.err
}

// mockRequirementService returns canned requirements and entries.
type mockRequirementService struct {
	requirement  *models.Requirement
	requirements []*models.Requirement
	entries      []*models.FunctionPointEntry
	err          error

	capturedInputs      []services.FunctionPointInput
	capturedRealFigures *services.RealFiguresInput
}

func (m *mockRequirementService) Create(ctx context.Context, needID uuid.UUID, input services.RequirementInput) (*models.Requirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirement, nil
}

func (m *mockRequirementService) Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirement, nil
}

func (m *mockRequirementService) ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirements, nil
}

func (m *mockRequirementService) Update(ctx context.Context, id uuid.UUID, input services.RequirementInput) (*models.Requirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirement, nil
}

func (m *mockRequirementService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.err
}

func (m *mockRequirementService) ReplaceFunctionPoints(ctx context.Context, requirementID uuid.UUID, inputs []services.FunctionPointInput) ([]*models.FunctionPointEntry, error) {
	m.capturedInputs = inputs
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockRequirementService) ListFunctionPoints(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockRequirementService) RecordRealFigures(ctx context.Context, entryID uuid.UUID, input services.RealFiguresInput) error {
	m.capturedRealFigures = &input
	return m.err
}

// mockExtractionService returns canned extraction results.
type mockExtractionService struct {
	requirements []*models.Requirement
	factor       float64
	err          error
}

func (m *mockExtractionService) ExtractRequirements(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.requirements, nil
}

func (m *mockExtractionService) SuggestFactor(ctx context.Context, parameterID uuid.UUID) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.factor, nil
}

// mockCatalogService returns a canned snapshot.
type mockCatalogService struct {
	snapshot *services.CatalogSnapshot
	imported int
	err      error

	invalidated bool
}

func (m *mockCatalogService) Snapshot(ctx context.Context) (*services.CatalogSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *mockCatalogService) UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error {
	return m.err
}

func (m *mockCatalogService) SetComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error {
	return m.err
}

func (m *mockCatalogService) ImportParameters(ctx context.Context, data []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.imported, nil
}

func (m *mockCatalogService) Invalidate() {
	m.invalidated = true
}
