package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/models"
	"github.com/estimaware/estima-engine/pkg/repositories"
)

// CatalogSnapshot is one consistent view of the estimation reference data.
type CatalogSnapshot struct {
	ElementTypes   []*models.ElementType
	ParameterTypes map[uuid.UUID]*models.ParameterType
	Parameters     []*models.EstimationParameter

	// ComplexityTypeID is the id of the reserved Complexity parameter
	// type; uuid.Nil when the catalog has none.
	ComplexityTypeID uuid.UUID
}

// ParameterCatalog adapts the snapshot for the pure estimator.
func (s *CatalogSnapshot) ParameterCatalog() *ParameterCatalog {
	return &ParameterCatalog{
		Parameters:       s.Parameters,
		ParameterTypes:   s.ParameterTypes,
		ComplexityTypeID: s.ComplexityTypeID,
	}
}

// ComplexityParameters returns the parameters of the Complexity type.
func (s *CatalogSnapshot) ComplexityParameters() []*models.EstimationParameter {
	if s.ComplexityTypeID == uuid.Nil {
		return nil
	}
	var out []*models.EstimationParameter
	for _, p := range s.Parameters {
		if p.ParameterTypeID == s.ComplexityTypeID {
			out = append(out, p)
		}
	}
	return out
}

// ParameterByID finds a parameter in the snapshot.
func (s *CatalogSnapshot) ParameterByID(id uuid.UUID) *models.EstimationParameter {
	for _, p := range s.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CatalogService serves the estimation reference data through a session-wide
// read-through cache. Nearly every estimate needs the full catalog; caching
// it removes the repeated identical queries the computation would otherwise
// issue. Admin edits invalidate explicitly.
type CatalogService interface {
	Snapshot(ctx context.Context) (*CatalogSnapshot, error)
	UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error
	SetComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error
	ImportParameters(ctx context.Context, data []byte) (int, error)
	Invalidate()
}

// catalogService implements CatalogService.
type catalogService struct {
	repo   repositories.CatalogRepository
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot *CatalogSnapshot
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repositories.CatalogRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger.Named("catalog"),
	}
}

// Snapshot returns the cached catalog, loading it on first use. A failed
// load is reported as ErrCatalogUnavailable and is not retried here; the
// caller decides how to degrade.
func (s *catalogService) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return s.snapshot, nil
	}

	snapshot, err := s.load(ctx)
	if err != nil {
		s.logger.Error("Failed to load estimation catalog", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}

	s.snapshot = snapshot
	s.logger.Info("Estimation catalog loaded",
		zap.Int("element_types", len(snapshot.ElementTypes)),
		zap.Int("parameter_types", len(snapshot.ParameterTypes)),
		zap.Int("parameters", len(snapshot.Parameters)))

	return snapshot, nil
}

func (s *catalogService) load(ctx context.Context) (*CatalogSnapshot, error) {
	elementTypes, err := s.repo.ListElementTypes(ctx)
	if err != nil {
		return nil, err
	}

	parameterTypes, err := s.repo.ListParameterTypes(ctx)
	if err != nil {
		return nil, err
	}

	parameters, err := s.repo.ListParameters(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &CatalogSnapshot{
		ElementTypes:   elementTypes,
		ParameterTypes: make(map[uuid.UUID]*models.ParameterType, len(parameterTypes)),
		Parameters:     parameters,
	}
	for _, pt := range parameterTypes {
		snapshot.ParameterTypes[pt.ID] = pt
		if pt.Name == models.ComplexityTypeName {
			snapshot.ComplexityTypeID = pt.ID
		}
	}

	return snapshot, nil
}

// UpdateParameterFactors updates a parameter's factors and invalidates the
// cache.
func (s *catalogService) UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error {
	if err := s.repo.UpdateParameterFactors(ctx, id, factor, factorAI); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// SetComplexityFactor upserts a per-element complexity factor and
// invalidates the cache.
func (s *catalogService) SetComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error {
	if err := s.repo.UpsertComplexityFactor(ctx, cf); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// parameterSeed is the YAML import format for the parameter catalog.
type parameterSeed struct {
	ParameterTypes []struct {
		Name               string `yaml:"name"`
		MultipliesElements bool   `yaml:"multiplies_elements"`
		Parameters         []struct {
			Name     string   `yaml:"name"`
			Factor   *float64 `yaml:"factor"`
			FactorAI *float64 `yaml:"factor_ai"`
		} `yaml:"parameters"`
	} `yaml:"parameter_types"`
}

// ImportParameters loads a YAML parameter seed, upserting types and
// parameters. Returns the number of parameters imported.
func (s *catalogService) ImportParameters(ctx context.Context, data []byte) (int, error) {
	var seed parameterSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, apperrors.NewValidation("yaml")
	}
	if len(seed.ParameterTypes) == 0 {
		return 0, apperrors.NewValidation("parameter_types")
	}

	// Upsert by name: re-importing the same seed updates factors in place.
	existing, err := s.repo.ListParameters(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}
	existingTypes, err := s.repo.ListParameterTypes(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}

	typeIDByName := make(map[string]uuid.UUID, len(existingTypes))
	for _, pt := range existingTypes {
		typeIDByName[pt.Name] = pt.ID
	}
	paramIDByKey := make(map[string]uuid.UUID, len(existing))
	for _, p := range existing {
		paramIDByKey[p.ParameterTypeID.String()+"/"+p.Name] = p.ID
	}

	count := 0
	for _, st := range seed.ParameterTypes {
		if st.Name == "" {
			return 0, apperrors.NewValidation("parameter_types.name")
		}

		pt := &models.ParameterType{
			ID:                 typeIDByName[st.Name],
			Name:               st.Name,
			MultipliesElements: st.MultipliesElements,
		}
		if err := s.repo.UpsertParameterType(ctx, pt); err != nil {
			return 0, err
		}

		for _, sp := range st.Parameters {
			if sp.Name == "" {
				return 0, apperrors.NewValidation("parameters.name")
			}
			p := &models.EstimationParameter{
				ID:              paramIDByKey[pt.ID.String()+"/"+sp.Name],
				ParameterTypeID: pt.ID,
				Name:            sp.Name,
				Factor:          sp.Factor,
				FactorAI:        sp.FactorAI,
			}
			if err := s.repo.UpsertParameter(ctx, p); err != nil {
				return 0, err
			}
			count++
		}
	}

	s.Invalidate()
	s.logger.Info("Parameter catalog imported", zap.Int("parameters", count))
	return count, nil
}

// Invalidate drops the cached snapshot; the next Snapshot call reloads.
func (s *catalogService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Ensure catalogService implements CatalogService at compile time.
var _ CatalogService = (*catalogService)(nil)
