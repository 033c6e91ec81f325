package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/standards"
)

// RequirementRepository is the PostgreSQL store for library requirements. It
// also serves the category reconciliation reads, which scan the library by
// FK presence.
type RequirementRepository struct {
	db *pgxpool.Pool
}

// NewRequirementRepository creates a PostgreSQL requirement repository
func NewRequirementRepository(pool *Pool) *RequirementRepository {
	return &RequirementRepository{db: pool.DB()}
}

const requirementColumns = `id, standard_id, requirement_code, section, title, official_description,
	implementation_guidance, custom_guidance, applicable_groups, priority, tags,
	category, category_id, is_active, created_at, updated_at`

// GetRequirement retrieves a requirement by ID
func (r *RequirementRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*standards.Requirement, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements_library
		WHERE id = $1
	`, id)
	return scanRequirement(row)
}

// GetRequirementByCode retrieves a requirement by its per-standard code.
// Codes collide across frameworks, so the standard scope is mandatory.
func (r *RequirementRepository) GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements_library
		WHERE standard_id = $1 AND requirement_code = $2
	`, standardID, code)
	return scanRequirement(row)
}

// ListByStandard returns all requirements of a standard in code order
func (r *RequirementRepository) ListByStandard(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error) {
	return r.list(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements_library
		WHERE standard_id = $1
		ORDER BY requirement_code
	`, standardID)
}

// ListActiveRequirements returns the active requirements a subscription fans
// out over
func (r *RequirementRepository) ListActiveRequirements(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error) {
	return r.list(ctx, `
		SELECT `+requirementColumns+`
		FROM requirements_library
		WHERE standard_id = $1 AND is_active
		ORDER BY requirement_code
	`, standardID)
}

// ListMissingCategory returns requirements without a category FK
func (r *RequirementRepository) ListMissingCategory(ctx context.Context) ([]*standards.Requirement, error) {
	return r.list(ctx, `
		SELECT ` + requirementColumns + `
		FROM requirements_library
		WHERE category_id IS NULL
		ORDER BY standard_id, requirement_code
	`)
}

// ListWithCategory returns requirements carrying a category FK
func (r *RequirementRepository) ListWithCategory(ctx context.Context) ([]*standards.Requirement, error) {
	return r.list(ctx, `
		SELECT ` + requirementColumns + `
		FROM requirements_library
		WHERE category_id IS NOT NULL
		ORDER BY standard_id, requirement_code
	`)
}

// CreateRequirement inserts a requirement
func (r *RequirementRepository) CreateRequirement(ctx context.Context, req *standards.Requirement) error {
	_, err := r.db.Exec(ctx, insertRequirementSQL, requirementArgs(req)...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewConflictError("requirement code already exists in this standard: " + req.Code)
		}
		if isForeignKeyViolation(err) {
			return errors.NewNotFoundError("standard")
		}
		return errors.NewInternalError("failed to insert requirement").WithCause(err)
	}
	return nil
}

// UpdateRequirement persists requirement changes
func (r *RequirementRepository) UpdateRequirement(ctx context.Context, req *standards.Requirement) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE requirements_library
		SET section = $2, title = $3, official_description = $4,
		    implementation_guidance = $5, custom_guidance = $6,
		    applicable_groups = $7, priority = $8, tags = $9,
		    category = $10, category_id = $11, is_active = $12, updated_at = $13
		WHERE id = $1
	`, req.ID, req.Section, req.Title, req.OfficialDescription,
		req.ImplementationGuidance, req.CustomGuidance,
		pq.Array(req.ApplicableGroups), string(req.Priority), pq.Array(req.Tags),
		req.Category, req.CategoryID, req.IsActive, req.UpdatedAt)
	if err != nil {
		return errors.NewInternalError("failed to update requirement").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("requirement")
	}
	return nil
}

// UpsertRequirement inserts by primary key, leaving existing rows untouched.
// Returns whether a row was created.
func (r *RequirementRepository) UpsertRequirement(ctx context.Context, req *standards.Requirement) (bool, error) {
	tag, err := r.db.Exec(ctx, insertRequirementSQL+` ON CONFLICT (id) DO NOTHING`, requirementArgs(req)...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, errors.NewNotFoundError("standard")
		}
		return false, errors.NewInternalError("failed to upsert requirement").WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetCategory writes the category FK and the cached text projection in one
// statement so they cannot drift apart here.
func (r *RequirementRepository) SetCategory(ctx context.Context, requirementID, categoryID uuid.UUID, categoryName string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE requirements_library
		SET category_id = $2, category = $3, updated_at = NOW()
		WHERE id = $1
	`, requirementID, categoryID, categoryName)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NewNotFoundError("unified category")
		}
		return errors.NewInternalError("failed to set requirement category").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("requirement")
	}
	return nil
}

const insertRequirementSQL = `
	INSERT INTO requirements_library (
		id, standard_id, requirement_code, section, title, official_description,
		implementation_guidance, custom_guidance, applicable_groups, priority, tags,
		category, category_id, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

func requirementArgs(req *standards.Requirement) []any {
	return []any{
		req.ID, req.StandardID, req.Code, req.Section, req.Title, req.OfficialDescription,
		req.ImplementationGuidance, req.CustomGuidance, pq.Array(req.ApplicableGroups),
		string(req.Priority), pq.Array(req.Tags), req.Category, req.CategoryID,
		req.IsActive, req.CreatedAt, req.UpdatedAt,
	}
}

func (r *RequirementRepository) list(ctx context.Context, query string, args ...any) ([]*standards.Requirement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list requirements").WithCause(err)
	}
	defer rows.Close()

	var result []*standards.Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func scanRequirement(row rowScanner) (*standards.Requirement, error) {
	var req standards.Requirement
	var priority string
	var groups, tags pq.StringArray
	err := row.Scan(&req.ID, &req.StandardID, &req.Code, &req.Section, &req.Title,
		&req.OfficialDescription, &req.ImplementationGuidance, &req.CustomGuidance,
		&groups, &priority, &tags, &req.Category, &req.CategoryID,
		&req.IsActive, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("requirement")
		}
		return nil, errors.NewInternalError("failed to scan requirement").WithCause(err)
	}
	req.ApplicableGroups = groups
	req.Tags = tags
	req.Priority = standards.Priority(priority)
	return &req, nil
}
