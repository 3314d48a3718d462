package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
)

// mockCatalogRepository is a configurable in-memory catalog.
type mockCatalogRepository struct {
	elementTypes   []*models.ElementType
	parameterTypes []*models.ParameterType
	parameters     []*models.EstimationParameter
	factors        []*models.ComplexityFactor

	listErr error

	listCalls               int
	capturedFactorUpdates   []uuid.UUID
	capturedUpsertedParams  []*models.EstimationParameter
	capturedUpsertedTypes   []*models.ParameterType
	capturedUpsertedFactors []*models.ComplexityFactor
}

func (m *mockCatalogRepository) ListElementTypes(ctx context.Context) ([]*models.ElementType, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.elementTypes, nil
}

func (m *mockCatalogRepository) ListParameterTypes(ctx context.Context) ([]*models.ParameterType, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.parameterTypes, nil
}

func (m *mockCatalogRepository) ListParameters(ctx context.Context) ([]*models.EstimationParameter, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.parameters, nil
}

func (m *mockCatalogRepository) GetComplexityFactors(ctx context.Context, parameterID uuid.UUID, elementTypeIDs []int) ([]*models.ComplexityFactor, error) {
	wanted := make(map[int]struct{}, len(elementTypeIDs))
	for _, id := range elementTypeIDs {
		wanted[id] = struct{}{}
	}
	var out []*models.ComplexityFactor
	for _, cf := range m.factors {
		if cf.ParameterID != parameterID {
			continue
		}
		if _, ok := wanted[cf.ElementTypeID]; ok {
			out = append(out, cf)
		}
	}
	return out, nil
}

func (m *mockCatalogRepository) GetComplexityFactor(ctx context.Context, parameterID uuid.UUID, elementTypeID int) (*models.ComplexityFactor, error) {
	for _, cf := range m.factors {
		if cf.ParameterID == parameterID && cf.ElementTypeID == elementTypeID {
			return cf, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCatalogRepository) UpsertParameterType(ctx context.Context, pt *models.ParameterType) error {
	if pt.ID == uuid.Nil {
		pt.ID = uuid.New()
	}
	m.capturedUpsertedTypes = append(m.capturedUpsertedTypes, pt)
	return nil
}

func (m *mockCatalogRepository) UpsertParameter(ctx context.Context, p *models.EstimationParameter) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.capturedUpsertedParams = append(m.capturedUpsertedParams, p)
	return nil
}

func (m *mockCatalogRepository) UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error {
	m.capturedFactorUpdates = append(m.capturedFactorUpdates, id)
	for _, p := range m.parameters {
		if p.ID == id {
			p.Factor = factor
			p.FactorAI = factorAI
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockCatalogRepository) UpsertComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error {
	m.capturedUpsertedFactors = append(m.capturedUpsertedFactors, cf)
	return nil
}

// mockProjectRepository holds a single project.
type mockProjectRepository struct {
	project *models.Project
	getErr  error

	realEffortSet *float64
	deleted       []uuid.UUID
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.ID = uuid.New()
	m.project = project
	return nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.project == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.project, nil
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	if m.project == nil {
		return nil, nil
	}
	return []*models.Project{m.project}, nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	m.project = project
	return nil
}

func (m *mockProjectRepository) SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error {
	m.realEffortSet = &days
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// mockNeedRepository holds needs by id.
type mockNeedRepository struct {
	needs  map[uuid.UUID]*models.Need
	getErr error
}

func newMockNeedRepository(needs ...*models.Need) *mockNeedRepository {
	m := &mockNeedRepository{needs: make(map[uuid.UUID]*models.Need)}
	for _, n := range needs {
		m.needs[n.ID] = n
	}
	return m
}

func (m *mockNeedRepository) Create(ctx context.Context, need *models.Need) error {
	need.ID = uuid.New()
	m.needs[need.ID] = need
	return nil
}

func (m *mockNeedRepository) Get(ctx context.Context, id uuid.UUID) (*models.Need, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	need, ok := m.needs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return need, nil
}

func (m *mockNeedRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error) {
	var out []*models.Need
	for _, n := range m.needs {
		if n.ProjectID == projectID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNeedRepository) Update(ctx context.Context, need *models.Need) error {
	m.needs[need.ID] = need
	return nil
}

func (m *mockNeedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.needs, id)
	return nil
}

// mockRequirementRepository holds requirements by id.
type mockRequirementRepository struct {
	requirements map[uuid.UUID]*models.Requirement
	batchErr     error

	batched [][]*models.Requirement
}

func newMockRequirementRepository(reqs ...*models.Requirement) *mockRequirementRepository {
	m := &mockRequirementRepository{requirements: make(map[uuid.UUID]*models.Requirement)}
	for _, r := range reqs {
		m.requirements[r.ID] = r
	}
	return m
}

func (m *mockRequirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	req.ID = uuid.New()
	m.requirements[req.ID] = req
	return nil
}

func (m *mockRequirementRepository) CreateBatch(ctx context.Context, reqs []*models.Requirement) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, r := range reqs {
		r.ID = uuid.New()
		m.requirements[r.ID] = r
	}
	m.batched = append(m.batched, reqs)
	return nil
}

func (m *mockRequirementRepository) Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	req, ok := m.requirements[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return req, nil
}

func (m *mockRequirementRepository) ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	var out []*models.Requirement
	for _, r := range m.requirements {
		if r.NeedID == needID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequirementRepository) Update(ctx context.Context, req *models.Requirement) error {
	m.requirements[req.ID] = req
	return nil
}

func (m *mockRequirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.requirements, id)
	return nil
}

// mockFunctionPointRepository holds entries per requirement.
type mockFunctionPointRepository struct {
	byRequirement map[uuid.UUID][]*models.FunctionPointEntry

	replaced map[uuid.UUID][]*models.FunctionPointEntry

	realEntryID    uuid.UUID
	realQuantity   *int
	realEffortDays *float64
}

func newMockFunctionPointRepository() *mockFunctionPointRepository {
	return &mockFunctionPointRepository{
		byRequirement: make(map[uuid.UUID][]*models.FunctionPointEntry),
		replaced:      make(map[uuid.UUID][]*models.FunctionPointEntry),
	}
}

func (m *mockFunctionPointRepository) ReplaceForRequirement(ctx context.Context, requirementID uuid.UUID, entries []*models.FunctionPointEntry) error {
	m.byRequirement[requirementID] = entries
	m.replaced[requirementID] = entries
	return nil
}

func (m *mockFunctionPointRepository) ListByRequirement(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error) {
	return m.byRequirement[requirementID], nil
}

func (m *mockFunctionPointRepository) ListByNeed(ctx context.Context, needID uuid.UUID) (map[uuid.UUID][]*models.FunctionPointEntry, error) {
	return m.byRequirement, nil
}

func (m *mockFunctionPointRepository) SetRealFigures(ctx context.Context, entryID uuid.UUID, realQuantity *int, realEffortDays *float64) error {
	m.realEntryID = entryID
	m.realQuantity = realQuantity
	m.realEffortDays = realEffortDays
	return nil
}
