package benchmark

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinCohortSize is the anonymity floor: aggregates over fewer organizations
// are withheld entirely, because small cohorts plus public sector/size
// filters would let a reader de-anonymize a competitor.
const MinCohortSize = 5

// Service computes anonymized cross-tenant fulfillment aggregates
type Service interface {
	// AggregateFulfillment returns cohort aggregates for a standard,
	// grouped by industry sector and company size range. Cohorts under
	// the anonymity floor are suppressed, not padded.
	AggregateFulfillment(ctx context.Context, query CohortQuery) ([]Cohort, error)

	// ComparePosture places one organization's average fulfillment
	// against its own cohort. The cohort must clear the floor even
	// though the caller is a member of it.
	ComparePosture(ctx context.Context, organizationID, standardID uuid.UUID) (*PostureComparison, error)

	// RecommendFocus returns the requirements where the organization
	// trails its cohort the most, widest gap first.
	RecommendFocus(ctx context.Context, organizationID, standardID uuid.UUID, limit int) ([]Recommendation, error)
}

// CohortQuery filters an aggregate request
type CohortQuery struct {
	StandardID       uuid.UUID
	RequirementID    *uuid.UUID
	IndustrySector   string
	CompanySizeRange string
}

// Cohort is one anonymized aggregate row. It never carries organization
// identifiers, only the group keys and the statistics.
type Cohort struct {
	StandardID        uuid.UUID       `json:"standard_id"`
	RequirementID     *uuid.UUID      `json:"requirement_id,omitempty"`
	IndustrySector    string          `json:"industry_sector"`
	CompanySizeRange  string          `json:"company_size_range"`
	OrganizationCount int             `json:"organization_count"`
	AvgFulfillment    decimal.Decimal `json:"avg_fulfillment"`
	FulfilledShare    decimal.Decimal `json:"fulfilled_share"`
}

// PostureComparison relates one organization to its cohort
type PostureComparison struct {
	OrganizationID uuid.UUID       `json:"organization_id"`
	StandardID     uuid.UUID       `json:"standard_id"`
	OwnFulfillment decimal.Decimal `json:"own_fulfillment"`
	CohortAvg      decimal.Decimal `json:"cohort_avg"`
	CohortSize     int             `json:"cohort_size"`
	AboveCohortAvg bool            `json:"above_cohort_avg"`
}

// Recommendation points at one requirement whose fulfillment trails the
// cohort average
type Recommendation struct {
	RequirementID   uuid.UUID       `json:"requirement_id"`
	RequirementCode string          `json:"requirement_code"`
	OwnFulfillment  decimal.Decimal `json:"own_fulfillment"`
	CohortAvg       decimal.Decimal `json:"cohort_avg"`
	Gap             decimal.Decimal `json:"gap"`
	CohortSize      int             `json:"cohort_size"`
}

// Repository is the persistence port for benchmark reads. Aggregation
// happens in SQL over standard-kind tenants only; demo and internal tenants
// never enter a cohort.
type Repository interface {
	// AggregateCohorts runs the grouped aggregate with the floor applied
	// in a HAVING clause. The service re-checks the floor anyway.
	AggregateCohorts(ctx context.Context, query CohortQuery, minCohortSize int) ([]Cohort, error)
	// OrganizationAverage returns the org's mean fulfillment for the standard
	OrganizationAverage(ctx context.Context, organizationID, standardID uuid.UUID) (decimal.Decimal, error)
	// CohortForOrganization aggregates the cohort the organization
	// belongs to, excluding no one (the org counts toward its own cohort).
	CohortForOrganization(ctx context.Context, organizationID, standardID uuid.UUID, minCohortSize int) (*Cohort, error)
	// RequirementGaps compares the organization's per-requirement
	// fulfillment against its cohort's averages, floor applied per row,
	// widest gap first.
	RequirementGaps(ctx context.Context, organizationID, standardID uuid.UUID, minCohortSize int) ([]Recommendation, error)
}
