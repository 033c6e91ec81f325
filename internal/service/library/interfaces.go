package library

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/standards"
)

// Service administers the standards and requirements library, the
// tenant-independent catalog every organization subscribes against.
type Service interface {
	CreateStandard(ctx context.Context, slug, name, version string, standardType standards.StandardType) (*standards.Standard, error)
	GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error)
	ListStandards(ctx context.Context, activeOnly bool) ([]*standards.Standard, error)

	// ReviseStandard records a new published revision in the standard's
	// version history and moves the live version pointer.
	ReviseStandard(ctx context.Context, standardID uuid.UUID, version, changeNotes string) (*standards.StandardVersion, error)

	DeactivateStandard(ctx context.Context, standardID uuid.UUID) error
	ReactivateStandard(ctx context.Context, standardID uuid.UUID) error

	// AddRequirement creates a requirement; codes are unique per standard
	AddRequirement(ctx context.Context, req AddRequirementRequest) (*standards.Requirement, error)
	GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error)
	ListRequirements(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error)
	DeactivateRequirement(ctx context.Context, requirementID uuid.UUID) error

	// ImportBackup restores standards and requirements from a plain-text
	// pg_dump backup stream. The import is idempotent: rows already
	// present are left untouched and counted as skipped.
	ImportBackup(ctx context.Context, backup io.Reader) (*ImportReport, error)
}

// AddRequirementRequest carries the inputs of AddRequirement
type AddRequirementRequest struct {
	StandardID          uuid.UUID `validate:"required"`
	Code                string    `validate:"required"`
	Section             string
	Title               string `validate:"required"`
	OfficialDescription string
	Priority            standards.Priority `validate:"required,oneof=low medium high critical"`
	ApplicableGroups    []string
	Tags                []string
}

// StandardRepository is the persistence port for standards
type StandardRepository interface {
	GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error)
	GetStandardBySlug(ctx context.Context, slug string) (*standards.Standard, error)
	ListStandards(ctx context.Context, activeOnly bool) ([]*standards.Standard, error)
	CreateStandard(ctx context.Context, s *standards.Standard) error
	UpdateStandard(ctx context.Context, s *standards.Standard) error
	// UpsertStandard inserts by primary key, reporting whether a row was
	// created. Existing rows are not modified.
	UpsertStandard(ctx context.Context, s *standards.Standard) (bool, error)
	AddVersion(ctx context.Context, v *standards.StandardVersion) error
	ListVersions(ctx context.Context, standardID uuid.UUID) ([]*standards.StandardVersion, error)
}

// RequirementRepository is the persistence port for library requirements
type RequirementRepository interface {
	GetRequirement(ctx context.Context, id uuid.UUID) (*standards.Requirement, error)
	GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error)
	ListByStandard(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error)
	CreateRequirement(ctx context.Context, r *standards.Requirement) error
	UpdateRequirement(ctx context.Context, r *standards.Requirement) error
	// UpsertRequirement inserts by primary key, reporting whether a row
	// was created. Existing rows are not modified.
	UpsertRequirement(ctx context.Context, r *standards.Requirement) (bool, error)
}
