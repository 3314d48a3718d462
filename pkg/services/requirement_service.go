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

// RequirementInput carries the editable fields of a requirement.
type RequirementInput struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// FunctionPointInput is one entry of the function point grid.
type FunctionPointInput struct {
	Kind              models.EntryKind `json:"kind"`
	ElementTypeID     int              `json:"element_type_id,omitempty"`
	ParameterID       uuid.UUID        `json:"parameter_id,omitempty"`
	EstimatedQuantity int              `json:"estimated_quantity"`
	RealQuantity      *int             `json:"real_quantity,omitempty"`
	RealEffortDays    *float64         `json:"real_effort_days,omitempty"`
}

// RealFiguresInput records delivered quantity and effort on one entry after
// the fact. Nil fields are stored as null.
type RealFiguresInput struct {
	RealQuantity   *int     `json:"real_quantity"`
	RealEffortDays *float64 `json:"real_effort_days"`
}

// RequirementService defines the interface for requirement operations,
// including the function point grid.
type RequirementService interface {
	Create(ctx context.Context, needID uuid.UUID, input RequirementInput) (*models.Requirement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error)
	ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error)
	Update(ctx context.Context, id uuid.UUID, input RequirementInput) (*models.Requirement, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceFunctionPoints(ctx context.Context, requirementID uuid.UUID, inputs []FunctionPointInput) ([]*models.FunctionPointEntry, error)
	ListFunctionPoints(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error)
	RecordRealFigures(ctx context.Context, entryID uuid.UUID, input RealFiguresInput) error
}

// requirementService implements RequirementService.
type requirementService struct {
	requirements   repositories.RequirementRepository
	needs          repositories.NeedRepository
	functionPoints repositories.FunctionPointRepository
	catalog        CatalogService
	logger         *zap.Logger
}

// NewRequirementService creates a new requirement service.
func NewRequirementService(
	requirements repositories.RequirementRepository,
	needs repositories.NeedRepository,
	functionPoints repositories.FunctionPointRepository,
	catalog CatalogService,
	logger *zap.Logger,
) RequirementService {
	return &requirementService{
		requirements:   requirements,
		needs:          needs,
		functionPoints: functionPoints,
		catalog:        catalog,
		logger:         logger.Named("requirements"),
	}
}

func (input *RequirementInput) validate() error {
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

// Create creates a requirement under a need.
func (s *requirementService) Create(ctx context.Context, needID uuid.UUID, input RequirementInput) (*models.Requirement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.needs.Get(ctx, needID); err != nil {
		return nil, err
	}

	req := &models.Requirement{
		NeedID: needID,
		Code:   strings.TrimSpace(input.Code),
		Name:   strings.TrimSpace(input.Name),
		Body:   input.Body,
	}
	if err := s.requirements.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// Get retrieves a requirement.
func (s *requirementService) Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	return s.requirements.Get(ctx, id)
}

// ListByNeed returns the requirements of a need.
func (s *requirementService) ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	return s.requirements.ListByNeed(ctx, needID)
}

// Update updates a requirement's editable fields.
func (s *requirementService) Update(ctx context.Context, id uuid.UUID, input RequirementInput) (*models.Requirement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	req, err := s.requirements.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Code = strings.TrimSpace(input.Code)
	req.Name = strings.TrimSpace(input.Name)
	req.Body = input.Body
	if err := s.requirements.Update(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// Delete removes a requirement and its function point entries.
func (s *requirementService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.requirements.Delete(ctx, id)
}

// ReplaceFunctionPoints validates and saves the full entry grid of a
// requirement. Negative quantities are rejected here rather than silently
// absorbed; element entries must name a known element type and parameter
// entries must name a parameter.
func (s *requirementService) ReplaceFunctionPoints(ctx context.Context, requirementID uuid.UUID, inputs []FunctionPointInput) ([]*models.FunctionPointEntry, error) {
	if _, err := s.requirements.Get(ctx, requirementID); err != nil {
		return nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	elementTypes := make(map[int]struct{}, len(snapshot.ElementTypes))
	for _, et := range snapshot.ElementTypes {
		elementTypes[et.ID] = struct{}{}
	}

	entries := make([]*models.FunctionPointEntry, 0, len(inputs))
	for _, in := range inputs {
		if in.EstimatedQuantity < 0 {
			return nil, apperrors.NewValidation("estimated_quantity")
		}

		entry := &models.FunctionPointEntry{
			Kind:              in.Kind,
			EstimatedQuantity: in.EstimatedQuantity,
			RealQuantity:      in.RealQuantity,
			RealEffortDays:    in.RealEffortDays,
		}

		switch in.Kind {
		case models.EntryElementQuantity:
			if _, ok := elementTypes[in.ElementTypeID]; !ok {
				return nil, apperrors.NewValidation("element_type_id")
			}
			entry.ElementTypeID = in.ElementTypeID
		case models.EntryParameterSelection:
			if in.ParameterID == uuid.Nil || snapshot.ParameterByID(in.ParameterID) == nil {
				return nil, apperrors.NewValidation("parameter_id")
			}
			entry.ParameterID = in.ParameterID
		default:
			return nil, apperrors.NewValidation("kind")
		}

		entries = append(entries, entry)
	}

	if err := s.functionPoints.ReplaceForRequirement(ctx, requirementID, entries); err != nil {
		return nil, err
	}

	s.logger.Debug("Function point grid replaced",
		zap.String("requirement_id", requirementID.String()),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// RecordRealFigures stores delivered quantity and effort on a single entry.
func (s *requirementService) RecordRealFigures(ctx context.Context, entryID uuid.UUID, input RealFiguresInput) error {
	var invalid []string
	if input.RealQuantity != nil && *input.RealQuantity < 0 {
		invalid = append(invalid, "real_quantity")
	}
	if input.RealEffortDays != nil && *input.RealEffortDays < 0 {
		invalid = append(invalid, "real_effort_days")
	}
	if len(invalid) > 0 {
		return apperrors.NewValidation(invalid...)
	}
	return s.functionPoints.SetRealFigures(ctx, entryID, input.RealQuantity, input.RealEffortDays)
}

// ListFunctionPoints returns a requirement's entries.
func (s *requirementService) ListFunctionPoints(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error) {
	return s.functionPoints.ListByRequirement(ctx, requirementID)
}

// Ensure requirementService implements RequirementService at compile time.
var _ RequirementService = (*requirementService)(nil)
