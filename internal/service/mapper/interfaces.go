package mapper

import (
	"context"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/standards"
	"github.com/auditready/auditready-backend/internal/domain/unified"
)

// Service maintains the many-to-many closure between library requirements
// and unified requirements so framework-specific fulfillment can be rolled
// up into a single cross-framework view.
type Service interface {
	// MapRequirement inserts a mapping edge, or no-ops if the pair already
	// exists. The result reports which of the two happened; an existing
	// mapping's strength is never overwritten, use RestrengthMapping for
	// that and check the returned mapping for the stored strength.
	MapRequirement(ctx context.Context, req MapRequest) (*MapResult, error)

	// RestrengthMapping explicitly changes an existing mapping's strength,
	// requiring an audit note.
	RestrengthMapping(ctx context.Context, unifiedID, requirementID uuid.UUID, strength unified.MappingStrength, note string) (*unified.Mapping, error)

	// RemapRequirement atomically moves a requirement's mapping edge from
	// one unified requirement to another. On failure the original mapping
	// is left intact.
	RemapRequirement(ctx context.Context, fromUnifiedID, toUnifiedID, requirementID uuid.UUID, rationale string) error

	// ResolveCategoryForRequirement resolves the unified category for a
	// library requirement, surfacing FK/text disagreement instead of
	// picking a side.
	ResolveCategoryForRequirement(ctx context.Context, requirementID uuid.UUID) (*unified.Category, error)

	// BulkReconcile backfills missing category FKs by name match and
	// reports (never auto-corrects) text/FK disagreements.
	BulkReconcile(ctx context.Context) (*ReconcileReport, error)
}

// MapRequest carries the arguments of MapRequirement
type MapRequest struct {
	UnifiedRequirementID uuid.UUID               `validate:"required"`
	RequirementID        uuid.UUID               `validate:"required"`
	Strength             unified.MappingStrength `validate:"required,oneof=exact strong partial"`
	Notes                string
}

// MapResult is the outcome of MapRequirement. Created is false when the pair
// already existed; Mapping is then the stored edge, whose strength may differ
// from the one requested.
type MapResult struct {
	Mapping *unified.Mapping `json:"mapping"`
	Created bool             `json:"created"`
}

// UnifiedRepository is the persistence port for the unified taxonomy side
type UnifiedRepository interface {
	GetRequirement(ctx context.Context, id uuid.UUID) (*unified.Requirement, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*unified.Category, error)
	// FindCategoryByName matches case-insensitively on the category name
	FindCategoryByName(ctx context.Context, name string) (*unified.Category, error)
	ListCategories(ctx context.Context) ([]*unified.Category, error)

	GetMapping(ctx context.Context, unifiedID, requirementID uuid.UUID) (*unified.Mapping, error)
	// InsertMapping relies on the (unified_requirement_id, requirement_id)
	// unique constraint: inserting an existing pair reports created=false.
	InsertMapping(ctx context.Context, m *unified.Mapping) (created bool, err error)
	UpdateMapping(ctx context.Context, m *unified.Mapping) error
	// MoveMapping deletes the edge under fromUnifiedID and re-inserts it
	// under toUnifiedID in one transaction, preserving strength and notes.
	MoveMapping(ctx context.Context, fromUnifiedID, toUnifiedID, requirementID uuid.UUID) error
}

// LibraryRepository is the persistence port for the requirements library
type LibraryRepository interface {
	GetRequirement(ctx context.Context, id uuid.UUID) (*standards.Requirement, error)
	// GetRequirementByCode is always scoped by standard: requirement codes
	// collide across frameworks.
	GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error)
	ListMissingCategory(ctx context.Context) ([]*standards.Requirement, error)
	ListWithCategory(ctx context.Context) ([]*standards.Requirement, error)
	// SetCategory writes the FK and the cached text projection together
	SetCategory(ctx context.Context, requirementID, categoryID uuid.UUID, categoryName string) error
}

// ReconcileReporter persists reconciliation findings for human review
type ReconcileReporter interface {
	SaveEntry(ctx context.Context, entry *ReconcileEntry) error
}
