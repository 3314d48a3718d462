// Package repositories implements PostgreSQL data access for estima-engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/database"
	"github.com/estimaware/estima-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, name, real_effort_days, complexity_parameter_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.Name,
		project.RealEffortDays,
		project.ComplexityParameterID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, name, real_effort_days, complexity_parameter_id, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var project models.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.RealEffortDays,
		&project.ComplexityParameterID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// List returns all projects, newest first.
func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, real_effort_days, complexity_parameter_id, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.RealEffortDays,
			&project.ComplexityParameterID,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// Update updates a project's editable fields.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = $2, complexity_parameter_id = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, project.ID, project.Name, project.ComplexityParameterID, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SetRealEffort records the delivered effort in workdays.
func (r *projectRepository) SetRealEffort(ctx context.Context, id uuid.UUID, days float64) error {
	query := `
		UPDATE projects
		SET real_effort_days = $2, updated_at = $3
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, days, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set real effort: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a project and everything it owns. Children are deleted
// before parents in reference order (entries, requirements, needs, project)
// inside one transaction so a failure leaves no orphans.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		DELETE FROM function_point_entries
		WHERE requirement_id IN (
			SELECT r.id FROM requirements r
			JOIN needs n ON n.id = r.need_id
			WHERE n.project_id = $1
		)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete function point entries: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM requirements
		WHERE need_id IN (SELECT id FROM needs WHERE project_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete requirements: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM needs WHERE project_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete needs: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
