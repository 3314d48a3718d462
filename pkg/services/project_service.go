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

// ProjectService defines the interface for project operations.
type ProjectService interface {
	Create(ctx context.Context, name string) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, name string, complexityParameterID *uuid.UUID) (*models.Project, error)
	SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// projectService implements ProjectService.
type projectService struct {
	projects repositories.ProjectRepository
	catalog  CatalogService
	logger   *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projects repositories.ProjectRepository, catalog CatalogService, logger *zap.Logger) ProjectService {
	return &projectService{
		projects: projects,
		catalog:  catalog,
		logger:   logger.Named("projects"),
	}
}

// Create creates a new project.
func (s *projectService) Create(ctx context.Context, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("name")
	}

	project := &models.Project{Name: name}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created", zap.String("project_id", project.ID.String()))
	return project, nil
}

// Get retrieves a project.
func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projects.Get(ctx, id)
}

// List returns all projects.
func (s *projectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.projects.List(ctx)
}

// Update renames a project and/or changes its complexity selection. The
// selected parameter must exist and belong to the Complexity type.
func (s *projectService) Update(ctx context.Context, id uuid.UUID, name string, complexityParameterID *uuid.UUID) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("name")
	}

	if complexityParameterID != nil {
		snapshot, err := s.catalog.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		param := snapshot.ParameterByID(*complexityParameterID)
		if param == nil || param.ParameterTypeID != snapshot.ComplexityTypeID {
			return nil, apperrors.NewValidation("complexity_parameter_id")
		}
	}

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.ComplexityParameterID = complexityParameterID
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// SetRealEffort records the delivered effort. Zero or negative values are
// rejected: zero is the "not recorded" marker.
func (s *projectService) SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error {
	if days <= 0 {
		return apperrors.NewValidation("real_effort_days")
	}
	return s.projects.SetRealEffort(ctx, id, days)
}

// Delete removes a project and all data it owns.
func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted", zap.String("project_id", id.String()))
	return nil
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
