package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
)

func newRequirementFixture() (RequirementService, *mockRequirementRepository, *mockFunctionPointRepository, *models.Requirement, *mockCatalogRepository) {
	need := &models.Need{ID: uuid.New(), Code: "N01", Name: "Billing"}
	needs := newMockNeedRepository(need)

	req := &models.Requirement{ID: uuid.New(), NeedID: need.ID, Code: "N01-R01", Name: "Invoices"}
	reqs := newMockRequirementRepository(req)

	fps := newMockFunctionPointRepository()
	catalogRepo := seededCatalogRepo()
	catalog := NewCatalogService(catalogRepo, zap.NewNop())

	svc := NewRequirementService(reqs, needs, fps, catalog, zap.NewNop())
	return svc, reqs, fps, req, catalogRepo
}

func TestRequirementService_CreateValidates(t *testing.T) {
	svc, _, _, req, _ := newRequirementFixture()

	_, err := svc.Create(context.Background(), req.NeedID, RequirementInput{Code: "", Name: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	created, err := svc.Create(context.Background(), req.NeedID, RequirementInput{Code: "N01-R02", Name: "Reminders"})
	require.NoError(t, err)
	assert.Equal(t, "N01-R02", created.Code)
}

func TestReplaceFunctionPoints_ValidGrid(t *testing.T) {
	svc, _, fps, req, catalogRepo := newRequirementFixture()

	entries, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{
		{Kind: models.EntryElementQuantity, ElementTypeID: models.ElementTables, EstimatedQuantity: 5},
		{Kind: models.EntryParameterSelection, ParameterID: catalogRepo.parameters[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	saved := fps.replaced[req.ID]
	require.Len(t, saved, 2)
	assert.Equal(t, models.ElementTables, saved[0].ElementTypeID)
	assert.Equal(t, catalogRepo.parameters[0].ID, saved[1].ParameterID)
}

func TestReplaceFunctionPoints_RejectsNegativeQuantity(t *testing.T) {
	svc, _, _, req, _ := newRequirementFixture()

	_, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{
		{Kind: models.EntryElementQuantity, ElementTypeID: models.ElementTables, EstimatedQuantity: -1},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReplaceFunctionPoints_RejectsUnknownElementType(t *testing.T) {
	svc, _, _, req, _ := newRequirementFixture()

	_, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{
		{Kind: models.EntryElementQuantity, ElementTypeID: 999, EstimatedQuantity: 1},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReplaceFunctionPoints_RejectsUnknownParameter(t *testing.T) {
	svc, _, _, req, _ := newRequirementFixture()

	_, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{
		{Kind: models.EntryParameterSelection, ParameterID: uuid.New()},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReplaceFunctionPoints_RejectsUnknownKind(t *testing.T) {
	svc, _, _, req, _ := newRequirementFixture()

	_, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{
		{Kind: "bogus", EstimatedQuantity: 1},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReplaceFunctionPoints_UnknownRequirement(t *testing.T) {
	svc, _, _, _, _ := newRequirementFixture()

	_, err := svc.ReplaceFunctionPoints(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReplaceFunctionPoints_EmptyGridClears(t *testing.T) {
	svc, _, fps, req, _ := newRequirementFixture()

	entries, err := svc.ReplaceFunctionPoints(context.Background(), req.ID, []FunctionPointInput{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	saved, ok := fps.replaced[req.ID]
	require.True(t, ok)
	assert.Empty(t, saved)
}

func TestRecordRealFigures_Stores(t *testing.T) {
	svc, _, fps, _, _ := newRequirementFixture()

	entryID := uuid.New()
	qty := 7
	days := 4.5
	require.NoError(t, svc.RecordRealFigures(context.Background(), entryID, RealFiguresInput{
		RealQuantity:   &qty,
		RealEffortDays: &days,
	}))

	assert.Equal(t, entryID, fps.realEntryID)
	require.NotNil(t, fps.realQuantity)
	assert.Equal(t, 7, *fps.realQuantity)
	require.NotNil(t, fps.realEffortDays)
	assert.InDelta(t, 4.5, *fps.realEffortDays, 1e-9)
}

func TestRecordRealFigures_RejectsNegative(t *testing.T) {
	svc, _, _, _, _ := newRequirementFixture()

	qty := -1
	err := svc.RecordRealFigures(context.Background(), uuid.New(), RealFiguresInput{RealQuantity: &qty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	days := -0.5
	err = svc.RecordRealFigures(context.Background(), uuid.New(), RealFiguresInput{RealEffortDays: &days})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
