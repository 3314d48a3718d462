package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/estimaware/estima-engine/pkg/apperrors"
	"github.com/estimaware/estima-engine/pkg/database"
	"github.com/estimaware/estima-engine/pkg/models"
)

// FunctionPointRepository defines the interface for function point entry access.
type FunctionPointRepository interface {
	// ReplaceForRequirement swaps the full entry set of a requirement
	// atomically. The UI always saves the whole grid.
	ReplaceForRequirement(ctx context.Context, requirementID uuid.UUID, entries []*models.FunctionPointEntry) error
	ListByRequirement(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error)
	ListByNeed(ctx context.Context, needID uuid.UUID) (map[uuid.UUID][]*models.FunctionPointEntry, error)
	SetRealFigures(ctx context.Context, entryID uuid.UUID, realQuantity *int, realEffortDays *float64) error
}

// functionPointRepository implements FunctionPointRepository using PostgreSQL.
type functionPointRepository struct {
	db *database.DB
}

// NewFunctionPointRepository creates a new function point repository.
func NewFunctionPointRepository(db *database.DB) FunctionPointRepository {
	return &functionPointRepository{db: db}
}

const selectEntryColumns = `
	SELECT id, requirement_id, element_type_id, parameter_id,
	       estimated_quantity, real_quantity, real_effort_days, created_at`

// ReplaceForRequirement deletes existing entries and inserts the new set in
// one transaction.
func (r *functionPointRepository) ReplaceForRequirement(ctx context.Context, requirementID uuid.UUID, entries []*models.FunctionPointEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM function_point_entries WHERE requirement_id = $1`, requirementID)
	if err != nil {
		return fmt.Errorf("failed to clear function point entries: %w", err)
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.RequirementID = requirementID
		entry.CreatedAt = now

		var elementTypeID *int
		var parameterID *uuid.UUID
		switch entry.Kind {
		case models.EntryElementQuantity:
			elementTypeID = &entry.ElementTypeID
		case models.EntryParameterSelection:
			parameterID = &entry.ParameterID
		default:
			return fmt.Errorf("unknown entry kind %q", entry.Kind)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO function_point_entries
				(id, requirement_id, element_type_id, parameter_id,
				 estimated_quantity, real_quantity, real_effort_days, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ID,
			entry.RequirementID,
			elementTypeID,
			parameterID,
			entry.EstimatedQuantity,
			entry.RealQuantity,
			entry.RealEffortDays,
			entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert function point entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByRequirement returns all entries recorded against a requirement.
func (r *functionPointRepository) ListByRequirement(ctx context.Context, requirementID uuid.UUID) ([]*models.FunctionPointEntry, error) {
	query := selectEntryColumns + `
		FROM function_point_entries
		WHERE requirement_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, requirementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list function point entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByNeed returns the entries of every requirement under a need, grouped
// by requirement, in a single round trip.
func (r *functionPointRepository) ListByNeed(ctx context.Context, needID uuid.UUID) (map[uuid.UUID][]*models.FunctionPointEntry, error) {
	query := selectEntryColumns + `
		FROM function_point_entries
		WHERE requirement_id IN (SELECT id FROM requirements WHERE need_id = $1)
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, needID)
	if err != nil {
		return nil, fmt.Errorf("failed to list function point entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]*models.FunctionPointEntry)
	for _, entry := range entries {
		grouped[entry.RequirementID] = append(grouped[entry.RequirementID], entry)
	}

	return grouped, nil
}

// SetRealFigures records delivered quantity and effort on a single entry.
func (r *functionPointRepository) SetRealFigures(ctx context.Context, entryID uuid.UUID, realQuantity *int, realEffortDays *float64) error {
	query := `
		UPDATE function_point_entries
		SET real_quantity = $2, real_effort_days = $3
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, entryID, realQuantity, realEffortDays)
	if err != nil {
		return fmt.Errorf("failed to set real figures: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanEntries decodes rows into entries, resolving the tagged union from
// which reference column is set. The CHECK constraint guarantees exactly one.
func scanEntries(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.FunctionPointEntry, error) {
	var entries []*models.FunctionPointEntry
	for rows.Next() {
		var entry models.FunctionPointEntry
		var elementTypeID *int
		var parameterID *uuid.UUID

		if err := rows.Scan(
			&entry.ID,
			&entry.RequirementID,
			&elementTypeID,
			&parameterID,
			&entry.EstimatedQuantity,
			&entry.RealQuantity,
			&entry.RealEffortDays,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan function point entry: %w", err)
		}

		switch {
		case elementTypeID != nil:
			entry.Kind = models.EntryElementQuantity
			entry.ElementTypeID = *elementTypeID
		case parameterID != nil:
			entry.Kind = models.EntryParameterSelection
			entry.ParameterID = *parameterID
		default:
			return nil, fmt.Errorf("function point entry %s references neither element type nor parameter", entry.ID)
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Ensure functionPointRepository implements FunctionPointRepository at compile time.
var _ FunctionPointRepository = (*functionPointRepository)(nil)
