package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/database"
	"github.com/estimaware/estima-engine/pkg/models"
)

// CatalogRepository defines data access for the estimation reference data:
// element types, parameter types, parameters and complexity factors.
type CatalogRepository interface {
	ListElementTypes(ctx context.Context) ([]*models.ElementType, error)
	ListParameterTypes(ctx context.Context) ([]*models.ParameterType, error)
	ListParameters(ctx context.Context) ([]*models.EstimationParameter, error)

	// GetComplexityFactors batch-loads factors for the given element types
	// under one complexity parameter in a single round trip.
	GetComplexityFactors(ctx context.Context, parameterID uuid.UUID, elementTypeIDs []int) ([]*models.ComplexityFactor, error)
	// GetComplexityFactor is the per-element fallback for batch misses.
	GetComplexityFactor(ctx context.Context, parameterID uuid.UUID, elementTypeID int) (*models.ComplexityFactor, error)

	UpsertParameterType(ctx context.Context, pt *models.ParameterType) error
	UpsertParameter(ctx context.Context, p *models.EstimationParameter) error
	UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error
	UpsertComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error
}

// catalogRepository implements CatalogRepository using PostgreSQL.
type catalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *database.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// ListElementTypes returns the affected element catalog.
func (r *catalogRepository) ListElementTypes(ctx context.Context) ([]*models.ElementType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label FROM element_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list element types: %w", err)
	}
	defer rows.Close()

	var types []*models.ElementType
	for rows.Next() {
		var et models.ElementType
		if err := rows.Scan(&et.ID, &et.Label); err != nil {
			return nil, fmt.Errorf("failed to scan element type: %w", err)
		}
		types = append(types, &et)
	}

	return types, rows.Err()
}

// ListParameterTypes returns all parameter types.
func (r *catalogRepository) ListParameterTypes(ctx context.Context) ([]*models.ParameterType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, multiplies_elements FROM parameter_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameter types: %w", err)
	}
	defer rows.Close()

	var types []*models.ParameterType
	for rows.Next() {
		var pt models.ParameterType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.MultipliesElements); err != nil {
			return nil, fmt.Errorf("failed to scan parameter type: %w", err)
		}
		types = append(types, &pt)
	}

	return types, rows.Err()
}

// ListParameters returns the full estimation parameter catalog.
func (r *catalogRepository) ListParameters(ctx context.Context) ([]*models.EstimationParameter, error) {
	query := `
		SELECT id, parameter_type_id, name, factor, factor_ai
		FROM estimation_parameters
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	defer rows.Close()

	var params []*models.EstimationParameter
	for rows.Next() {
		var p models.EstimationParameter
		if err := rows.Scan(&p.ID, &p.ParameterTypeID, &p.Name, &p.Factor, &p.FactorAI); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		params = append(params, &p)
	}

	return params, rows.Err()
}

// GetComplexityFactors batch-loads complexity factors for a set of element
// types. Missing pairs are simply absent from the result.
func (r *catalogRepository) GetComplexityFactors(ctx context.Context, parameterID uuid.UUID, elementTypeIDs []int) ([]*models.ComplexityFactor, error) {
	if len(elementTypeIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT element_type_id, parameter_id, factor
		FROM element_complexity_factors
		WHERE parameter_id = $1 AND element_type_id = ANY($2)`

	rows, err := r.db.Query(ctx, query, parameterID, elementTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-load complexity factors: %w", err)
	}
	defer rows.Close()

	var factors []*models.ComplexityFactor
	for rows.Next() {
		var cf models.ComplexityFactor
		if err := rows.Scan(&cf.ElementTypeID, &cf.ParameterID, &cf.Factor); err != nil {
			return nil, fmt.Errorf("failed to scan complexity factor: %w", err)
		}
		factors = append(factors, &cf)
	}

	return factors, rows.Err()
}

// GetComplexityFactor loads a single complexity factor.
func (r *catalogRepository) GetComplexityFactor(ctx context.Context, parameterID uuid.UUID, elementTypeID int) (*models.ComplexityFactor, error) {
	query := `
		SELECT element_type_id, parameter_id, factor
		FROM element_complexity_factors
		WHERE parameter_id = $1 AND element_type_id = $2`

	var cf models.ComplexityFactor
	err := r.db.QueryRow(ctx, query, parameterID, elementTypeID).Scan(
		&cf.ElementTypeID, &cf.ParameterID, &cf.Factor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get complexity factor: %w", err)
	}

	return &cf, nil
}

// UpsertParameterType inserts or updates a parameter type by name.
func (r *catalogRepository) UpsertParameterType(ctx context.Context, pt *models.ParameterType) error {
	if pt.ID == uuid.Nil {
		pt.ID = uuid.New()
	}

	query := `
		INSERT INTO parameter_types (id, name, multiplies_elements)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET multiplies_elements = EXCLUDED.multiplies_elements`

	if _, err := r.db.Exec(ctx, query, pt.ID, pt.Name, pt.MultipliesElements); err != nil {
		return fmt.Errorf("failed to upsert parameter type: %w", err)
	}

	return nil
}

// UpsertParameter inserts or updates an estimation parameter.
func (r *catalogRepository) UpsertParameter(ctx context.Context, p *models.EstimationParameter) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO estimation_parameters (id, parameter_type_id, name, factor, factor_ai)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET parameter_type_id = EXCLUDED.parameter_type_id,
		    name = EXCLUDED.name,
		    factor = EXCLUDED.factor,
		    factor_ai = EXCLUDED.factor_ai`

	if _, err := r.db.Exec(ctx, query, p.ID, p.ParameterTypeID, p.Name, p.Factor, p.FactorAI); err != nil {
		return fmt.Errorf("failed to upsert parameter: %w", err)
	}

	return nil
}

// UpdateParameterFactors updates the curated and AI-suggested factors.
func (r *catalogRepository) UpdateParameterFactors(ctx context.Context, id uuid.UUID, factor, factorAI *float64) error {
	query := `
		UPDATE estimation_parameters
		SET factor = $2, factor_ai = $3
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, factor, factorAI)
	if err != nil {
		return fmt.Errorf("failed to update parameter factors: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpsertComplexityFactor inserts or updates one (element type, parameter) factor.
func (r *catalogRepository) UpsertComplexityFactor(ctx context.Context, cf *models.ComplexityFactor) error {
	query := `
		INSERT INTO element_complexity_factors (element_type_id, parameter_id, factor)
		VALUES ($1, $2, $3)
		ON CONFLICT (element_type_id, parameter_id) DO UPDATE
		SET factor = EXCLUDED.factor`

	if _, err := r.db.Exec(ctx, query, cf.ElementTypeID, cf.ParameterID, cf.Factor); err != nil {
		return fmt.Errorf("failed to upsert complexity factor: %w", err)
	}

	return nil
}

// Ensure catalogRepository implements CatalogRepository at compile time.
var _ CatalogRepository = (*catalogRepository)(nil)
