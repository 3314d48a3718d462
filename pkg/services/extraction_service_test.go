package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/llm"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/retry"
)

func noRetry() *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = 0
	return cfg
}

func extractionFixture(client llm.Client) (ExtractionService, *mockNeedRepository, *mockRequirementRepository, uuid.UUID) {
	need := &models.Need{
		ID:   uuid.New(),
		Code: "N01",
		Name: "Invoicing",
		Body: "The system shall produce monthly invoices and send reminders.",
	}
	needs := newMockNeedRepository(need)
	reqs := newMockRequirementRepository()
	catalog := NewCatalogService(seededCatalogRepo(), zap.NewNop())
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	svc := NewExtractionService(client, pool, noRetry(), needs, reqs, catalog, zap.NewNop())
	return svc, needs, reqs, need.ID
}

func TestExtractRequirements_NotConfigured(t *testing.T) {
	svc, _, _, needID := extractionFixture(nil)

	_, err := svc.ExtractRequirements(context.Background(), needID)
	assert.ErrorIs(t, err, apperrors.ErrAINotConfigured)
}

func TestExtractRequirements_CreatesDescribedRequirements(t *testing.T) {
	client := &llm.MockClient{}
	client.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		if strings.Contains(prompt, "JSON array of short requirement titles") {
			return `["Generate invoices", "Send reminders"]`, nil
		}
		return `{"description": "Covers the described behavior."}`, nil
	}

	svc, _, reqs, needID := extractionFixture(client)

	created, err := svc.ExtractRequirements(context.Background(), needID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "N01-R01", created[0].Code)
	assert.Equal(t, "Generate invoices", created[0].Name)
	assert.Equal(t, "Covers the described behavior.", created[0].Body)
	assert.Equal(t, "N01-R02", created[1].Code)

	require.Len(t, reqs.batched, 1)
	assert.Len(t, reqs.batched[0], 2)
}

func TestExtractRequirements_FailedDescriptionKeepsTitle(t *testing.T) {
	client := &llm.MockClient{}
	client.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		if strings.Contains(prompt, "JSON array of short requirement titles") {
			return `["Generate invoices", "Send reminders"]`, nil
		}
		if strings.Contains(prompt, "Send reminders") {
			return "", &llm.Error{Type: llm.ErrorTypeAuth, Message: "denied", Retryable: false}
		}
		return `{"description": "Covers invoice generation."}`, nil
	}

	svc, _, _, needID := extractionFixture(client)

	created, err := svc.ExtractRequirements(context.Background(), needID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "Covers invoice generation.", created[0].Body)
	assert.Empty(t, created[1].Body)
}

func TestExtractRequirements_NoTitles(t *testing.T) {
	client := llm.NewMockClient(`[]`)
	svc, _, reqs, needID := extractionFixture(client)

	created, err := svc.ExtractRequirements(context.Background(), needID)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, reqs.batched)
}

func TestExtractRequirements_EmptyBodyRejected(t *testing.T) {
	client := llm.NewMockClient(`["x"]`)
	svc, needs, _, needID := extractionFixture(client)
	needs.needs[needID].Body = "   "

	_, err := svc.ExtractRequirements(context.Background(), needID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSuggestFactor_StoresFactorAI(t *testing.T) {
	repo := seededCatalogRepo()
	catalog := NewCatalogService(repo, zap.NewNop())
	client := llm.NewMockClient(`{"factor": 1.75}`)
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	svc := NewExtractionService(client, pool, noRetry(),
		newMockNeedRepository(), newMockRequirementRepository(), catalog, zap.NewNop())

	paramID := repo.parameters[1].ID
	factor, err := svc.SuggestFactor(context.Background(), paramID)
	require.NoError(t, err)

	assert.InDelta(t, 1.75, factor, 1e-9)
	require.NotNil(t, repo.parameters[1].FactorAI)
	assert.InDelta(t, 1.75, *repo.parameters[1].FactorAI, 1e-9)
}

func TestSuggestFactor_UnknownParameter(t *testing.T) {
	catalog := NewCatalogService(seededCatalogRepo(), zap.NewNop())
	client := llm.NewMockClient(`{"factor": 1}`)
	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	svc := NewExtractionService(client, pool, noRetry(),
		newMockNeedRepository(), newMockRequirementRepository(), catalog, zap.NewNop())

	_, err := svc.SuggestFactor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
