package orgreq

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auditready/auditready-backend/internal/domain/orgreq"
	"github.com/auditready/auditready-backend/internal/domain/standards"
	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

// Service manages per-tenant requirement instances across the compliance
// lifecycle. Every mutation carries the version the caller last read;
// concurrent edits surface as ConcurrentModificationError, never as silent
// last-writer-wins.
type Service interface {
	// SubscribeToStandard creates one instance per active requirement of
	// the standard. Requirements the organization already tracks are left
	// untouched, so re-subscribing is safe.
	SubscribeToStandard(ctx context.Context, organizationID, standardID uuid.UUID) (*SubscriptionResult, error)

	GetInstance(ctx context.Context, id uuid.UUID) (*orgreq.Requirement, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, standardID *uuid.UUID) ([]*orgreq.Requirement, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status orgreq.FulfillmentStatus, fulfillment decimal.Decimal, expectedVersion int) (*orgreq.Requirement, error)
	AttachEvidence(ctx context.Context, id uuid.UUID, evidence string, urls []string, expectedVersion int) (*orgreq.Requirement, error)
	AssignResponsible(ctx context.Context, id uuid.UUID, party string, expectedVersion int) (*orgreq.Requirement, error)
	MarkNotApplicable(ctx context.Context, id uuid.UUID, reason string, expectedVersion int) (*orgreq.Requirement, error)

	// ReseedDemo wipes and re-creates the tenant's instances. Only demo
	// tenants may be reseeded; the kind gates it, not a well-known ID.
	ReseedDemo(ctx context.Context, organizationID, standardID uuid.UUID) (*SubscriptionResult, error)
}

// SubscriptionResult reports what a subscription or reseed produced
type SubscriptionResult struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	StandardID     uuid.UUID `json:"standard_id"`
	Created        int       `json:"created"`
	AlreadyTracked int       `json:"already_tracked"`
}

// InstanceRepository is the persistence port for requirement instances
type InstanceRepository interface {
	GetInstance(ctx context.Context, id uuid.UUID) (*orgreq.Requirement, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, standardID *uuid.UUID) ([]*orgreq.Requirement, error)
	// CreateInstances inserts the batch, skipping rows whose
	// (organization_id, requirement_id) pair already exists, and reports
	// how many were actually inserted.
	CreateInstances(ctx context.Context, instances []*orgreq.Requirement) (int, error)
	// UpdateInstance persists the row, guarding on the stored version one
	// below the instance's new version.
	UpdateInstance(ctx context.Context, r *orgreq.Requirement) error
	// DeleteAllForOrganization removes every instance of the tenant.
	// Reachable only through the demo reseed path.
	DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int, error)
}

// OrganizationRepository resolves tenant records
type OrganizationRepository interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*tenant.Organization, error)
}

// LibraryReader lists the library requirements a subscription fans out over
type LibraryReader interface {
	GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error)
	ListActiveRequirements(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error)
}
