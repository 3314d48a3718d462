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

// RequirementRepository defines the interface for requirement data access.
type RequirementRepository interface {
	Create(ctx context.Context, req *models.Requirement) error
	CreateBatch(ctx context.Context, reqs []*models.Requirement) error
	Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error)
	ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error)
	Update(ctx context.Context, req *models.Requirement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// requirementRepository implements RequirementRepository using PostgreSQL.
type requirementRepository struct {
	db *database.DB
}

// NewRequirementRepository creates a new requirement repository.
func NewRequirementRepository(db *database.DB) RequirementRepository {
	return &requirementRepository{db: db}
}

const insertRequirementQuery = `
	INSERT INTO requirements (id, need_id, code, name, body, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Create inserts a new requirement under its need.
func (r *requirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, insertRequirementQuery,
		req.ID, req.NeedID, req.Code, req.Name, req.Body, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create requirement: %w", err)
	}

	return nil
}

// CreateBatch inserts extracted requirements in one transaction so a partial
// extraction failure does not leave half a document imported.
func (r *requirementRepository) CreateBatch(ctx context.Context, reqs []*models.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	for _, req := range reqs {
		if req.ID == uuid.Nil {
			req.ID = uuid.New()
		}
		req.CreatedAt = now

		if _, err := tx.Exec(ctx, insertRequirementQuery,
			req.ID, req.NeedID, req.Code, req.Name, req.Body, req.CreatedAt); err != nil {
			return fmt.Errorf("failed to create requirement %q: %w", req.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get retrieves a requirement by ID.
func (r *requirementRepository) Get(ctx context.Context, id uuid.UUID) (*models.Requirement, error) {
	query := `
		SELECT id, need_id, code, name, body, created_at
		FROM requirements
		WHERE id = $1`

	var req models.Requirement
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.NeedID,
		&req.Code,
		&req.Name,
		&req.Body,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}

	return &req, nil
}

// ListByNeed returns all requirements of a need in creation order.
func (r *requirementRepository) ListByNeed(ctx context.Context, needID uuid.UUID) ([]*models.Requirement, error) {
	query := `
		SELECT id, need_id, code, name, body, created_at
		FROM requirements
		WHERE need_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, needID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*models.Requirement
	for rows.Next() {
		var req models.Requirement
		if err := rows.Scan(
			&req.ID,
			&req.NeedID,
			&req.Code,
			&req.Name,
			&req.Body,
			&req.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		reqs = append(reqs, &req)
	}

	return reqs, rows.Err()
}

// Update updates a requirement's editable fields.
func (r *requirementRepository) Update(ctx context.Context, req *models.Requirement) error {
	query := `
		UPDATE requirements
		SET code = $2, name = $3, body = $4
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, req.ID, req.Code, req.Name, req.Body)
	if err != nil {
		return fmt.Errorf("failed to update requirement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a requirement and its function point entries.
func (r *requirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM function_point_entries WHERE requirement_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete function point entries: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete requirement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ensure requirementRepository implements RequirementRepository at compile time.
var _ RequirementRepository = (*requirementRepository)(nil)
