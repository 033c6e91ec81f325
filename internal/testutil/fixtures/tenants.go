package fixtures

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/orgreq"
	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

// OrganizationBuilder builds test Organization entities
type OrganizationBuilder struct {
	t         *testing.T
	name      string
	kind      tenant.Kind
	sector    string
	sizeRange string
}

// NewOrganizationBuilder creates an OrganizationBuilder for a standard tenant
func NewOrganizationBuilder(t *testing.T) *OrganizationBuilder {
	t.Helper()
	return &OrganizationBuilder{
		t:         t,
		name:      "Acme GmbH",
		kind:      tenant.KindStandard,
		sector:    "manufacturing",
		sizeRange: "51-200",
	}
}

// WithKind sets the tenant kind
func (b *OrganizationBuilder) WithKind(kind tenant.Kind) *OrganizationBuilder {
	b.kind = kind
	return b
}

// WithCohort sets the benchmarking cohort attributes
func (b *OrganizationBuilder) WithCohort(sector, sizeRange string) *OrganizationBuilder {
	b.sector = sector
	b.sizeRange = sizeRange
	return b
}

// Build creates the Organization
func (b *OrganizationBuilder) Build() *tenant.Organization {
	b.t.Helper()
	org, err := tenant.NewOrganization(b.name, b.kind, b.sector, b.sizeRange)
	require.NoError(b.t, err)
	return org
}

// InstanceBuilder builds test per-organization requirement instances
type InstanceBuilder struct {
	t              *testing.T
	organizationID uuid.UUID
	requirementID  uuid.UUID
	standardID     uuid.UUID
}

// NewInstanceBuilder creates an InstanceBuilder with random parents
func NewInstanceBuilder(t *testing.T) *InstanceBuilder {
	t.Helper()
	return &InstanceBuilder{
		t:              t,
		organizationID: uuid.New(),
		requirementID:  uuid.New(),
		standardID:     uuid.New(),
	}
}

// WithOrganization sets the owning organization
func (b *InstanceBuilder) WithOrganization(organizationID uuid.UUID) *InstanceBuilder {
	b.organizationID = organizationID
	return b
}

// WithRequirement sets the library requirement and its standard
func (b *InstanceBuilder) WithRequirement(requirementID, standardID uuid.UUID) *InstanceBuilder {
	b.requirementID = requirementID
	b.standardID = standardID
	return b
}

// Build creates the instance in its initial not-fulfilled state
func (b *InstanceBuilder) Build() *orgreq.Requirement {
	b.t.Helper()
	r, err := orgreq.NewRequirement(b.organizationID, b.requirementID, b.standardID)
	require.NoError(b.t, err)
	return r
}
