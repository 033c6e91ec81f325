package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/standards"
)

// StandardRepository is the PostgreSQL store for the standards library
type StandardRepository struct {
	db *pgxpool.Pool
}

// NewStandardRepository creates a PostgreSQL standard repository
func NewStandardRepository(pool *Pool) *StandardRepository {
	return &StandardRepository{db: pool.DB()}
}

const standardColumns = `id, slug, name, version, type, description, is_active, sort_order, created_at, updated_at`

// GetStandard retrieves a standard by ID
func (r *StandardRepository) GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+standardColumns+`
		FROM standards_library
		WHERE id = $1
	`, id)
	return scanStandard(row)
}

// GetStandardBySlug retrieves a standard by its unique slug
func (r *StandardRepository) GetStandardBySlug(ctx context.Context, slug string) (*standards.Standard, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+standardColumns+`
		FROM standards_library
		WHERE slug = $1
	`, slug)
	return scanStandard(row)
}

// ListStandards returns standards ordered for display
func (r *StandardRepository) ListStandards(ctx context.Context, activeOnly bool) ([]*standards.Standard, error) {
	query := `
		SELECT ` + standardColumns + `
		FROM standards_library
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name, version`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.NewInternalError("failed to list standards").WithCause(err)
	}
	defer rows.Close()

	var result []*standards.Standard
	for rows.Next() {
		s, err := scanStandard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateStandard inserts a standard
func (r *StandardRepository) CreateStandard(ctx context.Context, s *standards.Standard) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO standards_library (id, slug, name, version, type, description, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.Slug, s.Name, s.Version, string(s.Type), s.Description, s.IsActive, s.SortOrder, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewConflictError("standard slug already exists: " + s.Slug)
		}
		return errors.NewInternalError("failed to insert standard").WithCause(err)
	}
	return nil
}

// UpdateStandard persists standard changes
func (r *StandardRepository) UpdateStandard(ctx context.Context, s *standards.Standard) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE standards_library
		SET slug = $2, name = $3, version = $4, type = $5, description = $6,
		    is_active = $7, sort_order = $8, updated_at = $9
		WHERE id = $1
	`, s.ID, s.Slug, s.Name, s.Version, string(s.Type), s.Description, s.IsActive, s.SortOrder, s.UpdatedAt)
	if err != nil {
		return errors.NewInternalError("failed to update standard").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("standard")
	}
	return nil
}

// UpsertStandard inserts by primary key, leaving existing rows untouched.
// Returns whether a row was created.
func (r *StandardRepository) UpsertStandard(ctx context.Context, s *standards.Standard) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO standards_library (id, slug, name, version, type, description, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.Slug, s.Name, s.Version, string(s.Type), s.Description, s.IsActive, s.SortOrder, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return false, errors.NewInternalError("failed to upsert standard").WithCause(err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddVersion appends a row to the standard's revision history
func (r *StandardRepository) AddVersion(ctx context.Context, v *standards.StandardVersion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO standard_versions (id, standard_id, version, published_at, change_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.StandardID, v.Version, v.PublishedAt, v.ChangeNotes, v.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.NewNotFoundError("standard")
		}
		return errors.NewInternalError("failed to insert standard version").WithCause(err)
	}
	return nil
}

// ListVersions returns the revision history, newest first
func (r *StandardRepository) ListVersions(ctx context.Context, standardID uuid.UUID) ([]*standards.StandardVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, standard_id, version, published_at, change_notes, created_at
		FROM standard_versions
		WHERE standard_id = $1
		ORDER BY published_at DESC
	`, standardID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list standard versions").WithCause(err)
	}
	defer rows.Close()

	var result []*standards.StandardVersion
	for rows.Next() {
		var v standards.StandardVersion
		if err := rows.Scan(&v.ID, &v.StandardID, &v.Version, &v.PublishedAt, &v.ChangeNotes, &v.CreatedAt); err != nil {
			return nil, errors.NewInternalError("failed to scan standard version").WithCause(err)
		}
		result = append(result, &v)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStandard(row rowScanner) (*standards.Standard, error) {
	var s standards.Standard
	var standardType string
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Version, &standardType,
		&s.Description, &s.IsActive, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("standard")
		}
		return nil, errors.NewInternalError("failed to scan standard").WithCause(err)
	}
	s.Type = standards.StandardType(standardType)
	return &s, nil
}
