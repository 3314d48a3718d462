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

// NeedRepository defines the interface for need data access.
type NeedRepository interface {
	Create(ctx context.Context, need *models.Need) error
	Get(ctx context.Context, id uuid.UUID) (*models.Need, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error)
	Update(ctx context.Context, need *models.Need) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// needRepository implements NeedRepository using PostgreSQL.
type needRepository struct {
	db *database.DB
}

// NewNeedRepository creates a new need repository.
func NewNeedRepository(db *database.DB) NeedRepository {
	return &needRepository{db: db}
}

// Create inserts a new need under its project.
func (r *needRepository) Create(ctx context.Context, need *models.Need) error {
	if need.ID == uuid.Nil {
		need.ID = uuid.New()
	}
	need.CreatedAt = time.Now()

	query := `
		INSERT INTO needs (id, project_id, code, name, body, reference_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`

	_, err := r.db.Exec(ctx, query,
		need.ID,
		need.ProjectID,
		need.Code,
		need.Name,
		need.Body,
		need.ReferenceURL,
		need.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create need: %w", err)
	}

	return nil
}

// Get retrieves a need by ID.
func (r *needRepository) Get(ctx context.Context, id uuid.UUID) (*models.Need, error) {
	query := `
		SELECT id, project_id, code, name, body, COALESCE(reference_url, ''), created_at
		FROM needs
		WHERE id = $1`

	var need models.Need
	err := r.db.QueryRow(ctx, query, id).Scan(
		&need.ID,
		&need.ProjectID,
		&need.Code,
		&need.Name,
		&need.Body,
		&need.ReferenceURL,
		&need.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get need: %w", err)
	}

	return &need, nil
}

// ListByProject returns all needs of a project in creation order.
func (r *needRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Need, error) {
	query := `
		SELECT id, project_id, code, name, body, COALESCE(reference_url, ''), created_at
		FROM needs
		WHERE project_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list needs: %w", err)
	}
	defer rows.Close()

	var needs []*models.Need
	for rows.Next() {
		var need models.Need
		if err := rows.Scan(
			&need.ID,
			&need.ProjectID,
			&need.Code,
			&need.Name,
			&need.Body,
			&need.ReferenceURL,
			&need.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan need: %w", err)
		}
		needs = append(needs, &need)
	}

	return needs, rows.Err()
}

// Update updates a need's editable fields.
func (r *needRepository) Update(ctx context.Context, need *models.Need) error {
	query := `
		UPDATE needs
		SET code = $2, name = $3, body = $4, reference_url = NULLIF($5, '')
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, need.ID, need.Code, need.Name, need.Body, need.ReferenceURL)
	if err != nil {
		return fmt.Errorf("failed to update need: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a need with its requirements and their entries, children
// first, in one transaction.
func (r *needRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		DELETE FROM function_point_entries
		WHERE requirement_id IN (SELECT id FROM requirements WHERE need_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete function point entries: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM requirements WHERE need_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete requirements: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM needs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete need: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ensure needRepository implements NeedRepository at compile time.
var _ NeedRepository = (*needRepository)(nil)
