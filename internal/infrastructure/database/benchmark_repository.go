package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/service/benchmark"
)

// BenchmarkRepository runs the anonymized cross-tenant aggregates. Only
// standard-kind tenants enter a cohort; demo and internal tenants are
// excluded in the WHERE clause, and the anonymity floor is applied in
// HAVING so undersized groups never leave the database.
type BenchmarkRepository struct {
	db *pgxpool.Pool
}

// NewBenchmarkRepository creates a PostgreSQL benchmark repository
func NewBenchmarkRepository(pool *Pool) *BenchmarkRepository {
	return &BenchmarkRepository{db: pool.DB()}
}

// AggregateCohorts runs the grouped fulfillment aggregate for a standard
func (r *BenchmarkRepository) AggregateCohorts(ctx context.Context, query benchmark.CohortQuery, minCohortSize int) ([]benchmark.Cohort, error) {
	sql := `
		SELECT o.industry_sector, o.company_size_range,
		       COUNT(DISTINCT orq.organization_id) AS org_count,
		       AVG(orq.fulfillment_percentage)::text AS avg_fulfillment,
		       AVG(CASE WHEN orq.status = 'fulfilled' THEN 1 ELSE 0 END)::numeric(5,4)::text AS fulfilled_share
		FROM organization_requirements orq
		JOIN organizations o ON o.id = orq.organization_id
		WHERE o.kind = 'standard'
		  AND orq.standard_id = $1
		  AND orq.status <> 'not-applicable'`
	args := []any{query.StandardID}

	if query.RequirementID != nil {
		args = append(args, *query.RequirementID)
		sql += fmt.Sprintf(` AND orq.requirement_id = $%d`, len(args))
	}
	if query.IndustrySector != "" {
		args = append(args, query.IndustrySector)
		sql += fmt.Sprintf(` AND o.industry_sector = $%d`, len(args))
	}
	if query.CompanySizeRange != "" {
		args = append(args, query.CompanySizeRange)
		sql += fmt.Sprintf(` AND o.company_size_range = $%d`, len(args))
	}

	args = append(args, minCohortSize)
	sql += fmt.Sprintf(`
		GROUP BY o.industry_sector, o.company_size_range
		HAVING COUNT(DISTINCT orq.organization_id) >= $%d
		ORDER BY o.industry_sector, o.company_size_range`, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.NewInternalError("failed to aggregate cohorts").WithCause(err)
	}
	defer rows.Close()

	var cohorts []benchmark.Cohort
	for rows.Next() {
		c := benchmark.Cohort{
			StandardID:    query.StandardID,
			RequirementID: query.RequirementID,
		}
		var avg, share string
		if err := rows.Scan(&c.IndustrySector, &c.CompanySizeRange, &c.OrganizationCount, &avg, &share); err != nil {
			return nil, errors.NewInternalError("failed to scan cohort").WithCause(err)
		}
		if c.AvgFulfillment, err = decimal.NewFromString(avg); err != nil {
			return nil, errors.NewInternalError("failed to parse average fulfillment").WithCause(err)
		}
		if c.FulfilledShare, err = decimal.NewFromString(share); err != nil {
			return nil, errors.NewInternalError("failed to parse fulfilled share").WithCause(err)
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}

// OrganizationAverage returns the organization's mean fulfillment for the
// standard
func (r *BenchmarkRepository) OrganizationAverage(ctx context.Context, organizationID, standardID uuid.UUID) (decimal.Decimal, error) {
	var avg *string
	err := r.db.QueryRow(ctx, `
		SELECT AVG(fulfillment_percentage)::text
		FROM organization_requirements
		WHERE organization_id = $1 AND standard_id = $2 AND status <> 'not-applicable'
	`, organizationID, standardID).Scan(&avg)
	if err != nil {
		return decimal.Zero, errors.NewInternalError("failed to compute organization average").WithCause(err)
	}
	if avg == nil {
		return decimal.Zero, errors.NewNotFoundError("organization fulfillment data")
	}
	value, err := decimal.NewFromString(*avg)
	if err != nil {
		return decimal.Zero, errors.NewInternalError("failed to parse organization average").WithCause(err)
	}
	return value, nil
}

// RequirementGaps compares the organization's per-requirement fulfillment
// against its cohort's per-requirement averages. Rows where the cohort is
// under the floor never leave the CTE.
func (r *BenchmarkRepository) RequirementGaps(ctx context.Context, organizationID, standardID uuid.UUID, minCohortSize int) ([]benchmark.Recommendation, error) {
	rows, err := r.db.Query(ctx, `
		WITH me AS (
			SELECT industry_sector, company_size_range FROM organizations WHERE id = $1
		), cohort AS (
			SELECT orq.requirement_id,
			       COUNT(DISTINCT orq.organization_id) AS org_count,
			       AVG(orq.fulfillment_percentage) AS cohort_avg
			FROM organization_requirements orq
			JOIN organizations o ON o.id = orq.organization_id
			JOIN me ON o.industry_sector = me.industry_sector
			       AND o.company_size_range = me.company_size_range
			WHERE o.kind = 'standard'
			  AND orq.standard_id = $2
			  AND orq.status <> 'not-applicable'
			GROUP BY orq.requirement_id
			HAVING COUNT(DISTINCT orq.organization_id) >= $3
		)
		SELECT rl.id, rl.requirement_code,
		       own.fulfillment_percentage::text,
		       cohort.cohort_avg::text,
		       (cohort.cohort_avg - own.fulfillment_percentage)::text,
		       cohort.org_count
		FROM cohort
		JOIN organization_requirements own
		  ON own.requirement_id = cohort.requirement_id AND own.organization_id = $1
		JOIN requirements_library rl ON rl.id = cohort.requirement_id
		WHERE own.status <> 'not-applicable'
		ORDER BY cohort.cohort_avg - own.fulfillment_percentage DESC
	`, organizationID, standardID, minCohortSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to compute requirement gaps").WithCause(err)
	}
	defer rows.Close()

	var gaps []benchmark.Recommendation
	for rows.Next() {
		var g benchmark.Recommendation
		var own, avg, gap string
		if err := rows.Scan(&g.RequirementID, &g.RequirementCode, &own, &avg, &gap, &g.CohortSize); err != nil {
			return nil, errors.NewInternalError("failed to scan requirement gap").WithCause(err)
		}
		if g.OwnFulfillment, err = decimal.NewFromString(own); err != nil {
			return nil, errors.NewInternalError("failed to parse own fulfillment").WithCause(err)
		}
		if g.CohortAvg, err = decimal.NewFromString(avg); err != nil {
			return nil, errors.NewInternalError("failed to parse cohort average").WithCause(err)
		}
		if g.Gap, err = decimal.NewFromString(gap); err != nil {
			return nil, errors.NewInternalError("failed to parse fulfillment gap").WithCause(err)
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}

// CohortForOrganization aggregates the cohort the organization belongs to,
// including the organization itself
func (r *BenchmarkRepository) CohortForOrganization(ctx context.Context, organizationID, standardID uuid.UUID, minCohortSize int) (*benchmark.Cohort, error) {
	var sector, sizeRange string
	err := r.db.QueryRow(ctx, `
		SELECT industry_sector, company_size_range FROM organizations WHERE id = $1
	`, organizationID).Scan(&sector, &sizeRange)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("organization")
		}
		return nil, errors.NewInternalError("failed to resolve organization cohort keys").WithCause(err)
	}

	cohorts, err := r.AggregateCohorts(ctx, benchmark.CohortQuery{
		StandardID:       standardID,
		IndustrySector:   sector,
		CompanySizeRange: sizeRange,
	}, minCohortSize)
	if err != nil {
		return nil, err
	}
	if len(cohorts) == 0 {
		return nil, errors.NewNotFoundError("benchmark cohort")
	}
	return &cohorts[0], nil
}
