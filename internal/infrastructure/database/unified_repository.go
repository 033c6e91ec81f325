package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/unified"
)

// UnifiedRepository is the PostgreSQL store for the unified taxonomy:
// categories, consolidated requirements and their mapping edges into the
// requirements library.
type UnifiedRepository struct {
	db *pgxpool.Pool
}

// NewUnifiedRepository creates a PostgreSQL unified taxonomy repository
func NewUnifiedRepository(pool *Pool) *UnifiedRepository {
	return &UnifiedRepository{db: pool.DB()}
}

// GetRequirement retrieves a unified requirement by ID
func (r *UnifiedRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*unified.Requirement, error) {
	var req unified.Requirement
	var subs []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, category_id, title, description, sub_requirements, sort_order, created_at, updated_at
		FROM unified_requirements
		WHERE id = $1
	`, id).Scan(&req.ID, &req.CategoryID, &req.Title, &req.Description, &subs,
		&req.SortOrder, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("unified requirement")
		}
		return nil, errors.NewInternalError("failed to get unified requirement").WithCause(err)
	}
	if err := json.Unmarshal(subs, &req.SubRequirements); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal sub-requirements").WithCause(err)
	}
	return &req, nil
}

// GetCategory retrieves a unified category by ID
func (r *UnifiedRepository) GetCategory(ctx context.Context, id uuid.UUID) (*unified.Category, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM unified_categories
		WHERE id = $1
	`, id)
	return scanCategory(row)
}

// FindCategoryByName matches case-insensitively on the category name
func (r *UnifiedRepository) FindCategoryByName(ctx context.Context, name string) (*unified.Category, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM unified_categories
		WHERE LOWER(name) = LOWER(TRIM($1))
	`, name)
	return scanCategory(row)
}

// ListCategories returns the full taxonomy in display order
func (r *UnifiedRepository) ListCategories(ctx context.Context) ([]*unified.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM unified_categories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, errors.NewInternalError("failed to list categories").WithCause(err)
	}
	defer rows.Close()

	var result []*unified.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetMapping retrieves the mapping edge for a (unified, requirement) pair
func (r *UnifiedRepository) GetMapping(ctx context.Context, unifiedID, requirementID uuid.UUID) (*unified.Mapping, error) {
	var m unified.Mapping
	var strength string
	err := r.db.QueryRow(ctx, `
		SELECT id, unified_requirement_id, requirement_id, mapping_strength, notes, created_at, updated_at
		FROM unified_requirement_mappings
		WHERE unified_requirement_id = $1 AND requirement_id = $2
	`, unifiedID, requirementID).Scan(&m.ID, &m.UnifiedRequirementID, &m.RequirementID,
		&strength, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("requirement mapping")
		}
		return nil, errors.NewInternalError("failed to get mapping").WithCause(err)
	}
	m.Strength = unified.MappingStrength(strength)
	return &m, nil
}

// InsertMapping inserts a mapping edge, relying on the pair's unique
// constraint. An existing pair reports created=false without touching the row.
func (r *UnifiedRepository) InsertMapping(ctx context.Context, m *unified.Mapping) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO unified_requirement_mappings (id, unified_requirement_id, requirement_id, mapping_strength, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (unified_requirement_id, requirement_id) DO NOTHING
	`, m.ID, m.UnifiedRequirementID, m.RequirementID, string(m.Strength), m.Notes, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, errors.NewNotFoundError("mapping endpoint")
		}
		return false, errors.NewInternalError("failed to insert mapping").WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateMapping persists strength and notes changes on an existing edge
func (r *UnifiedRepository) UpdateMapping(ctx context.Context, m *unified.Mapping) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE unified_requirement_mappings
		SET mapping_strength = $2, notes = $3, updated_at = $4
		WHERE id = $1
	`, m.ID, string(m.Strength), m.Notes, m.UpdatedAt)
	if err != nil {
		return errors.NewInternalError("failed to update mapping").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("requirement mapping")
	}
	return nil
}

// MoveMapping re-homes a requirement's mapping edge from one unified
// requirement to another in a single transaction. The edge keeps its
// strength and notes; remapping changes where it points, nothing else.
func (r *UnifiedRepository) MoveMapping(ctx context.Context, fromUnifiedID, toUnifiedID, requirementID uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var strength, notes string
		err := tx.QueryRow(ctx, `
			DELETE FROM unified_requirement_mappings
			WHERE unified_requirement_id = $1 AND requirement_id = $2
			RETURNING mapping_strength, notes
		`, fromUnifiedID, requirementID).Scan(&strength, &notes)
		if err != nil {
			if isNoRows(err) {
				return errors.NewNotFoundError("requirement mapping")
			}
			return errors.NewInternalError("failed to remove mapping").WithCause(err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO unified_requirement_mappings (id, unified_requirement_id, requirement_id, mapping_strength, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`, uuid.New(), toUnifiedID, requirementID, strength, notes)
		if err != nil {
			if isUniqueViolation(err) {
				return errors.NewConflictError("requirement is already mapped to the target unified requirement")
			}
			if isForeignKeyViolation(err) {
				return errors.NewNotFoundError("unified requirement")
			}
			return errors.NewInternalError("failed to insert moved mapping").WithCause(err)
		}
		return nil
	})
	return err
}

func scanCategory(row rowScanner) (*unified.Category, error) {
	var c unified.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("unified category")
		}
		return nil, errors.NewInternalError("failed to scan category").WithCause(err)
	}
	return &c, nil
}
