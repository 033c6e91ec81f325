package database

import (
	"github.com/auditready/auditready-backend/internal/service/benchmark"
	guidancesvc "github.com/auditready/auditready-backend/internal/service/guidance"
	"github.com/auditready/auditready-backend/internal/service/library"
	"github.com/auditready/auditready-backend/internal/service/mapper"
	"github.com/auditready/auditready-backend/internal/service/orgreq"
)

// LibraryReader composes the standard and requirement stores into the
// read-only library view that subscriptions fan out over
type LibraryReader struct {
	*StandardRepository
	*RequirementRepository
}

// NewLibraryReader creates the composite library reader
func NewLibraryReader(pool *Pool) *LibraryReader {
	return &LibraryReader{
		StandardRepository:    NewStandardRepository(pool),
		RequirementRepository: NewRequirementRepository(pool),
	}
}

// Compile-time checks that the repositories satisfy their service ports
var (
	_ library.StandardRepository    = (*StandardRepository)(nil)
	_ library.RequirementRepository = (*RequirementRepository)(nil)

	_ mapper.UnifiedRepository = (*UnifiedRepository)(nil)
	_ mapper.LibraryRepository = (*RequirementRepository)(nil)
	_ mapper.ReconcileReporter = (*ReconcileRepository)(nil)

	_ guidancesvc.VersionRepository    = (*GuidanceRepository)(nil)
	_ guidancesvc.SuggestionRepository = (*SuggestionRepository)(nil)
	_ guidancesvc.KnowledgeRepository  = (*KnowledgeRepository)(nil)

	_ orgreq.InstanceRepository     = (*OrgRequirementRepository)(nil)
	_ orgreq.OrganizationRepository = (*OrganizationRepository)(nil)
	_ orgreq.LibraryReader          = (*LibraryReader)(nil)

	_ benchmark.Repository = (*BenchmarkRepository)(nil)
)
