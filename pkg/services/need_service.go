package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/repositories"
)

// NeedInput carries the editable fields of a need.
type NeedInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Body         string `json:"body"`
	ReferenceURL string `json:"reference_url"`
}

// NeedService defines the interface for need operations.
type NeedService interface {
	Create(ctx context.Context, projectID uuid.UUID, input NeedInput) (*models.Need, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Need, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error)
	Update(ctx context.Context, id uuid.UUID, input NeedInput) (*models.Need, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// needService implements NeedService.
type needService struct {
	needs    repositories.NeedRepository
	projects repositories.ProjectRepository
	logger   *zap.Logger
}

// NewNeedService creates a new need service.
func NewNeedService(needs repositories.NeedRepository, projects repositories.ProjectRepository, logger *zap.Logger) NeedService {
	return &needService{
		needs:    needs,
		projects: projects,
		logger:   logger.Named("needs"),
	}
}

func (input *NeedInput) validate() error {
	var missing []string
	if strings.TrimSpace(input.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return apperrors.NewValidation(missing...)
	}
	return nil
}

// Create creates a need under a project.
func (s *needService) Create(ctx context.Context, projectID uuid.UUID, input NeedInput) (*models.Need, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	// Parent must exist; a dangling need would never aggregate anywhere.
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	need := &models.Need{
		ProjectID:    projectID,
		Code:         strings.TrimSpace(input.Code),
		Name:         strings.TrimSpace(input.Name),
		Body:         input.Body,
		ReferenceURL: input.ReferenceURL,
	}
	if err := s.needs.Create(ctx, need); err != nil {
		return nil, err
	}

	s.logger.Info("Need created",
		zap.String("need_id", need.ID.String()),
		zap.String("project_id", projectID.String()))
	return need, nil
}

// Get retrieves a need.
func (s *needService) Get(ctx context.Context, id uuid.UUID) (*models.Need, error) {
	return s.needs.Get(ctx, id)
}

// ListByProject returns the needs of a project.
func (s *needService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error) {
	return s.needs.ListByProject(ctx, projectID)
}

// Update updates a need's editable fields.
func (s *needService) Update(ctx context.Context, id uuid.UUID, input NeedInput) (*models.Need, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	need, err := s.needs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	need.Code = strings.TrimSpace(input.Code)
	need.Name = strings.TrimSpace(input.Name)
	need.Body = input.Body
	need.ReferenceURL = input.ReferenceURL
	if err := s.needs.Update(ctx, need); err != nil {
		return nil, err
	}

	return need, nil
}

// Delete removes a need with its requirements and entries.
func (s *needService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.needs.Delete(ctx, id)
}

// Ensure needService implements NeedService at compile time.
var _ NeedService = (*needService)(nil)
