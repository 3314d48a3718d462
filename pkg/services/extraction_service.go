package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/jsonutil"
	"github.com/estimaware/estima-engine/pkg/llm"
	"github.com/estimaware/estima-engine/pkg/logging"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/repositories"
	"github.com/estimaware/estima-engine/pkg/retry"
)

const extractionSystemMessage = "You are an analyst extracting software requirements " +
	"from client needs documents. Answer only with JSON matching the requested shape."

const titlesPromptTemplate = `Extract the discrete software requirements from the
following needs document. Reply with a JSON array of short requirement titles,
most important first, nothing else.

Document:
%s`

const describePromptTemplate = `For the requirement titled %q extracted from the
needs document below, write a concise description (2-4 sentences) of its scope.
Reply with JSON: {"description": "..."}.

Document:
%s`

// ExtractionService derives requirements from a need's document body using a
// text-generation model.
type ExtractionService interface {
	// ExtractRequirements extracts requirement titles from the need body,
	// describes each one, and persists the results as requirements under
	// the need.
	ExtractRequirements(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error)

	// SuggestFactor asks the model for a suggested factor for a parameter
	// and stores it as the parameter's factor_ai.
	SuggestFactor(ctx context.Context, parameterID uuid.UUID) (float64, error)
}

// extractionService implements ExtractionService.
type extractionService struct {
	client       llm.Client // nil when no AI endpoint is configured
	pool         *llm.WorkerPool
	retryCfg     *retry.Config
	needs        repositories.NeedRepository
	requirements repositories.RequirementRepository
	catalog      CatalogService
	logger       *zap.Logger
}

// NewExtractionService creates a new extraction service. client may be nil;
// operations then fail with apperrors.ErrAINotConfigured.
func NewExtractionService(
	client llm.Client,
	pool *llm.WorkerPool,
	retryCfg *retry.Config,
	needs repositories.NeedRepository,
	requirements repositories.RequirementRepository,
	catalog CatalogService,
	logger *zap.Logger,
) ExtractionService {
	return &extractionService{
		client:       client,
		pool:         pool,
		retryCfg:     retryCfg,
		needs:        needs,
		requirements: requirements,
		catalog:      catalog,
		logger:       logger.Named("extraction"),
	}
}

// describedRequirement pairs an extracted title with its description.
type describedRequirement struct {
	Title       string
	Description string
}

// ExtractRequirements runs the two-stage pipeline: one call extracts titles,
// then one describe-call per title runs through the bounded worker pool with
// per-item retry. Titles whose description ultimately fails are imported
// with an empty body rather than dropped.
func (s *extractionService) ExtractRequirements(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	if s.client == nil {
		return nil, apperrors.ErrAINotConfigured
	}

	need, err := s.needs.Get(ctx, needID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(need.Body) == "" {
		return nil, apperrors.NewValidation("body")
	}

	s.logger.Debug("Extracting requirements",
		zap.String("need_id", needID.String()),
		zap.String("body_preview", logging.TruncateString(need.Body, 120)))

	titles, err := s.extractTitles(ctx, need.Body)
	if err != nil {
		return nil, fmt.Errorf("extract titles: %w", err)
	}
	if len(titles) == 0 {
		return nil, nil
	}

	s.logger.Info("Requirement titles extracted",
		zap.String("need_id", needID.String()),
		zap.Int("titles", len(titles)))

	items := make([]llm.WorkItem[describedRequirement], 0, len(titles))
	for _, title := range titles {
		items = append(items, llm.WorkItem[describedRequirement]{
			ID: title,
			Execute: func(ctx context.Context) (describedRequirement, error) {
				desc, err := s.describeTitle(ctx, title, need.Body)
				return describedRequirement{Title: title, Description: desc}, err
			},
		})
	}

	results := llm.Process(ctx, s.pool, items)

	described := make(map[string]string, len(results))
	for _, res := range results {
		if res.Err != nil {
			s.logger.Warn("Failed to describe extracted requirement",
				zap.String("title", res.ID),
				zap.String("error", logging.SanitizeError(res.Err)))
			continue
		}
		described[res.Result.Title] = res.Result.Description
	}

	// Preserve extraction order regardless of completion order.
	reqs := make([]*models.Requirement, 0, len(titles))
	for i, title := range titles {
		reqs = append(reqs, &models.Requirement{
			NeedID: needID,
			Code:   fmt.Sprintf("%s-R%02d", need.Code, i+1),
			Name:   title,
			Body:   described[title],
		})
	}

	if err := s.requirements.CreateBatch(ctx, reqs); err != nil {
		return nil, err
	}

	return reqs, nil
}

// extractTitles runs the title-extraction call with retry on transient
// failures.
func (s *extractionService) extractTitles(ctx context.Context, body string) ([]string, error) {
	var titles []string
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		response, err := s.client.Complete(ctx, fmt.Sprintf(titlesPromptTemplate, body), extractionSystemMessage, 0.2)
		if err != nil {
			return err
		}

		parsed, err := llm.ParseJSONResponse[[]string](response)
		if err != nil {
			return &llm.Error{Type: llm.ErrorTypeResponse, Message: "malformed titles response", Retryable: true, Cause: err}
		}
		titles = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	cleaned := titles[:0]
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return cleaned, nil
}

// describeTitle runs one describe-call with retry on transient failures.
func (s *extractionService) describeTitle(ctx context.Context, title, body string) (string, error) {
	var description string
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		response, err := s.client.Complete(ctx, fmt.Sprintf(describePromptTemplate, title, body), extractionSystemMessage, 0.2)
		if err != nil {
			return err
		}

		// Models occasionally type the description field loosely.
		parsed, err := llm.ParseJSONResponse[struct {
			Description json.RawMessage `json:"description"`
		}](response)
		if err != nil {
			return &llm.Error{Type: llm.ErrorTypeResponse, Message: "malformed description response", Retryable: true, Cause: err}
		}
		description = jsonutil.FlexibleStringValue(parsed.Description)
		return nil
	})
	return description, err
}

const suggestFactorPromptTemplate = `Suggest an effort weighting factor for the
estimation parameter %q of type %q in a software project estimation model based
on function points, where a factor of 1.0 is a neutral weight. Reply with JSON:
{"factor": <number>}.`

// SuggestFactor asks the model for a factor suggestion and stores it as the
// parameter's factor_ai, invalidating the catalog cache.
func (s *extractionService) SuggestFactor(ctx context.Context, parameterID uuid.UUID) (float64, error) {
	if s.client == nil {
		return 0, apperrors.ErrAINotConfigured
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	param := snapshot.ParameterByID(parameterID)
	if param == nil {
		return 0, apperrors.ErrNotFound
	}
	typeName := ""
	if pt := snapshot.ParameterTypes[param.ParameterTypeID]; pt != nil {
		typeName = pt.Name
	}

	var factor float64
	err = retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		response, err := s.client.Complete(ctx,
			fmt.Sprintf(suggestFactorPromptTemplate, param.Name, typeName),
			extractionSystemMessage, 0)
		if err != nil {
			return err
		}

		parsed, err := llm.ParseJSONResponse[struct {
			Factor json.RawMessage `json:"factor"`
		}](response)
		if err != nil {
			return &llm.Error{Type: llm.ErrorTypeResponse, Message: "malformed factor response", Retryable: true, Cause: err}
		}
		value, ok := jsonutil.FlexibleFloatValue(parsed.Factor)
		if !ok {
			return &llm.Error{Type: llm.ErrorTypeResponse, Message: "non-numeric factor response", Retryable: true}
		}
		factor = value
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.catalog.UpdateParameterFactors(ctx, parameterID, param.Factor, &factor); err != nil {
		return 0, err
	}

	s.logger.Info("Factor suggestion stored",
		zap.String("parameter_id", parameterID.String()),
		zap.Float64("factor", factor))
	return factor, nil
}

// Ensure extractionService implements ExtractionService at compile time.
var _ ExtractionService = (*extractionService)(nil)
