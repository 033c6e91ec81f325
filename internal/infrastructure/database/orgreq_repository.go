package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/orgreq"
	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

// OrgRequirementRepository is the PostgreSQL store for per-tenant requirement
// instances
type OrgRequirementRepository struct {
	db *pgxpool.Pool
}

// NewOrgRequirementRepository creates a PostgreSQL instance repository
func NewOrgRequirementRepository(pool *Pool) *OrgRequirementRepository {
	return &OrgRequirementRepository{db: pool.DB()}
}

const instanceColumns = `id, organization_id, requirement_id, standard_id, status, fulfillment_percentage,
	evidence, evidence_urls, notes, responsible_party, workflow_state, data_classification,
	version, created_at, updated_at`

// GetInstance retrieves an instance by ID
func (r *OrgRequirementRepository) GetInstance(ctx context.Context, id uuid.UUID) (*orgreq.Requirement, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+instanceColumns+`
		FROM organization_requirements
		WHERE id = $1
	`, id)
	return scanInstance(row)
}

// ListByOrganization returns the tenant's instances, optionally scoped to one
// standard
func (r *OrgRequirementRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, standardID *uuid.UUID) ([]*orgreq.Requirement, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM organization_requirements
		WHERE organization_id = $1`
	args := []any{organizationID}
	if standardID != nil {
		query += ` AND standard_id = $2`
		args = append(args, *standardID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to list organization requirements").WithCause(err)
	}
	defer rows.Close()

	var result []*orgreq.Requirement
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, rows.Err()
}

// CreateInstances inserts the batch in one transaction, skipping rows whose
// (organization_id, requirement_id) pair already exists. Returns how many
// rows were actually inserted.
func (r *OrgRequirementRepository) CreateInstances(ctx context.Context, instances []*orgreq.Requirement) (int, error) {
	inserted := 0
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, inst := range instances {
			tag, err := tx.Exec(ctx, `
				INSERT INTO organization_requirements (`+instanceColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
				ON CONFLICT (organization_id, requirement_id) DO NOTHING
			`, inst.ID, inst.OrganizationID, inst.RequirementID, inst.StandardID,
				string(inst.Status), inst.Fulfillment, inst.Evidence, pq.Array(inst.EvidenceURLs),
				inst.Notes, inst.ResponsibleParty, inst.WorkflowState, string(inst.Classification),
				inst.Version, inst.CreatedAt, inst.UpdatedAt)
			if err != nil {
				if isForeignKeyViolation(err) {
					return errors.NewNotFoundError("organization or requirement")
				}
				return errors.NewInternalError("failed to insert requirement instance").WithCause(err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpdateInstance persists the row, guarding on the stored version being one
// below the instance's new version. Zero rows affected means another writer
// got there first.
func (r *OrgRequirementRepository) UpdateInstance(ctx context.Context, inst *orgreq.Requirement) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE organization_requirements
		SET status = $2, fulfillment_percentage = $3, evidence = $4, evidence_urls = $5,
		    notes = $6, responsible_party = $7, workflow_state = $8, data_classification = $9,
		    version = $10, updated_at = $11
		WHERE id = $1 AND version = $10 - 1
	`, inst.ID, string(inst.Status), inst.Fulfillment, inst.Evidence, pq.Array(inst.EvidenceURLs),
		inst.Notes, inst.ResponsibleParty, inst.WorkflowState, string(inst.Classification),
		inst.Version, inst.UpdatedAt)
	if err != nil {
		return errors.NewInternalError("failed to update requirement instance").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewConcurrentModificationError("organization requirement was modified concurrently")
	}
	return nil
}

// DeleteAllForOrganization removes every instance of the tenant. Reachable
// only through the demo reseed path; the service gates on tenant kind.
func (r *OrgRequirementRepository) DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM organization_requirements WHERE organization_id = $1
	`, organizationID)
	if err != nil {
		return 0, errors.NewInternalError("failed to delete organization requirements").WithCause(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanInstance(row rowScanner) (*orgreq.Requirement, error) {
	var inst orgreq.Requirement
	var status, classification string
	var urls pq.StringArray
	err := row.Scan(&inst.ID, &inst.OrganizationID, &inst.RequirementID, &inst.StandardID,
		&status, &inst.Fulfillment, &inst.Evidence, &urls, &inst.Notes,
		&inst.ResponsibleParty, &inst.WorkflowState, &classification,
		&inst.Version, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("organization requirement")
		}
		return nil, errors.NewInternalError("failed to scan requirement instance").WithCause(err)
	}
	inst.Status = orgreq.FulfillmentStatus(status)
	inst.Classification = orgreq.DataClassification(classification)
	inst.EvidenceURLs = urls
	return &inst, nil
}

// OrganizationRepository resolves tenant records
type OrganizationRepository struct {
	db *pgxpool.Pool
}

// NewOrganizationRepository creates a PostgreSQL organization repository
func NewOrganizationRepository(pool *Pool) *OrganizationRepository {
	return &OrganizationRepository{db: pool.DB()}
}

// GetOrganization retrieves a tenant by ID
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*tenant.Organization, error) {
	var org tenant.Organization
	var kind string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, kind, industry_sector, company_size_range, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &kind, &org.IndustrySector, &org.CompanySizeRange,
		&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("organization")
		}
		return nil, errors.NewInternalError("failed to get organization").WithCause(err)
	}
	org.Kind = tenant.Kind(kind)
	return &org, nil
}

// CreateOrganization inserts a tenant record
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *tenant.Organization) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO organizations (id, name, kind, industry_sector, company_size_range, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, org.ID, org.Name, string(org.Kind), org.IndustrySector, org.CompanySizeRange,
		org.CreatedAt, org.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewConflictError("organization already exists")
		}
		return errors.NewInternalError("failed to insert organization").WithCause(err)
	}
	return nil
}
