package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Kind distinguishes tenant behavior classes. Demo tenants get periodic
// reseeding and public read access; routing those behaviors through the
// kind replaces the fixed demo-organization UUID the data used to match on.
type Kind string

const (
	KindStandard Kind = "standard"
	KindDemo     Kind = "demo"
	KindInternal Kind = "internal"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindStandard, KindDemo, KindInternal:
		return true
	}
	return false
}

// Organization is one tenant of the platform
type Organization struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Kind             Kind      `json:"kind"`
	IndustrySector   string    `json:"industry_sector"`
	CompanySizeRange string    `json:"company_size_range"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewOrganization creates a tenant record with validation
func NewOrganization(name string, kind Kind, sector, sizeRange string) (*Organization, error) {
	if name == "" {
		return nil, errors.NewValidationError("INVALID_NAME", "organization name is required")
	}
	if !kind.IsValid() {
		return nil, errors.NewValidationError("INVALID_KIND", "unknown tenant kind: "+string(kind))
	}

	now := time.Now()
	return &Organization{
		ID:               uuid.New(),
		Name:             name,
		Kind:             kind,
		IndustrySector:   sector,
		CompanySizeRange: sizeRange,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CanReseed reports whether the tenant's data may be wiped and reseeded by
// the periodic demo refresh job
func (o *Organization) CanReseed() bool {
	return o.Kind == KindDemo
}

// PublicRead reports whether the tenant's compliance posture is readable
// without membership
func (o *Organization) PublicRead() bool {
	return o.Kind == KindDemo
}

// CountsTowardBenchmarks reports whether the tenant participates in
// cross-tenant aggregates. Demo and internal tenants would skew cohorts.
func (o *Organization) CountsTowardBenchmarks() bool {
	return o.Kind == KindStandard
}
