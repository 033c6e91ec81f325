package benchmark

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/metrics"
)

type service struct {
	logger    *zap.Logger
	repo      Repository
	cohortMin int
}

var _ Service = (*service)(nil)

// NewService creates the benchmarking service. cohortMin below the anonymity
// floor is raised to it, never lowered.
func NewService(logger *zap.Logger, repo Repository, cohortMin int) Service {
	if cohortMin < MinCohortSize {
		cohortMin = MinCohortSize
	}
	return &service{logger: logger, repo: repo, cohortMin: cohortMin}
}

func (s *service) AggregateFulfillment(ctx context.Context, query CohortQuery) ([]Cohort, error) {
	if query.StandardID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_STANDARD", "standard ID is required")
	}

	cohorts, err := s.repo.AggregateCohorts(ctx, query, s.cohortMin)
	if err != nil {
		return nil, errors.NewInternalError("failed to aggregate cohorts").WithCause(err)
	}

	// the floor is applied in SQL; re-check here so a repository bug can
	// never leak a thin cohort
	visible := cohorts[:0]
	for _, c := range cohorts {
		if c.OrganizationCount < s.cohortMin {
			metrics.CohortsSuppressed.Inc()
			s.logger.Warn("suppressing under-floor cohort from repository",
				zap.String("sector", c.IndustrySector),
				zap.String("size_range", c.CompanySizeRange),
				zap.Int("organizations", c.OrganizationCount),
			)
			continue
		}
		visible = append(visible, c)
	}
	return visible, nil
}

func (s *service) ComparePosture(ctx context.Context, organizationID, standardID uuid.UUID) (*PostureComparison, error) {
	if organizationID == uuid.Nil || standardID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", "organization and standard IDs are required")
	}

	own, err := s.repo.OrganizationAverage(ctx, organizationID, standardID)
	if err != nil {
		return nil, err
	}

	cohort, err := s.repo.CohortForOrganization(ctx, organizationID, standardID, s.cohortMin)
	if err != nil {
		return nil, err
	}
	if cohort.OrganizationCount < s.cohortMin {
		metrics.CohortsSuppressed.Inc()
		return nil, errors.NewNotFoundError("benchmark cohort")
	}

	return &PostureComparison{
		OrganizationID: organizationID,
		StandardID:     standardID,
		OwnFulfillment: own,
		CohortAvg:      cohort.AvgFulfillment,
		CohortSize:     cohort.OrganizationCount,
		AboveCohortAvg: own.GreaterThan(cohort.AvgFulfillment),
	}, nil
}

// defaultFocusLimit bounds RecommendFocus when the caller passes no limit
const defaultFocusLimit = 5

func (s *service) RecommendFocus(ctx context.Context, organizationID, standardID uuid.UUID, limit int) ([]Recommendation, error) {
	if organizationID == uuid.Nil || standardID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", "organization and standard IDs are required")
	}
	if limit <= 0 {
		limit = defaultFocusLimit
	}

	gaps, err := s.repo.RequirementGaps(ctx, organizationID, standardID, s.cohortMin)
	if err != nil {
		return nil, err
	}

	focus := make([]Recommendation, 0, limit)
	for _, g := range gaps {
		if g.CohortSize < s.cohortMin {
			metrics.CohortsSuppressed.Inc()
			continue
		}
		if !g.Gap.IsPositive() {
			continue
		}
		focus = append(focus, g)
		if len(focus) == limit {
			break
		}
	}
	return focus, nil
}
