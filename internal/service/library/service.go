package library

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/standards"
)

type service struct {
	logger       *zap.Logger
	standards    StandardRepository
	requirements RequirementRepository
	validate     *validator.Validate
}

var _ Service = (*service)(nil)

// NewService creates the library administration service
func NewService(logger *zap.Logger, standardRepo StandardRepository, requirementRepo RequirementRepository) Service {
	return &service{
		logger:       logger,
		standards:    standardRepo,
		requirements: requirementRepo,
		validate:     validator.New(),
	}
}

func (s *service) CreateStandard(ctx context.Context, slug, name, version string, standardType standards.StandardType) (*standards.Standard, error) {
	if existing, err := s.standards.GetStandardBySlug(ctx, slug); err == nil && existing != nil {
		return nil, errors.NewConflictError("a standard with slug " + slug + " already exists")
	} else if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	standard, err := standards.NewStandard(slug, name, version, standardType)
	if err != nil {
		return nil, err
	}
	if err := s.standards.CreateStandard(ctx, standard); err != nil {
		return nil, errors.NewInternalError("failed to persist standard").WithCause(err)
	}

	s.logger.Info("standard created",
		zap.String("slug", slug),
		zap.String("name", standard.DisplayName()),
	)
	return standard, nil
}

func (s *service) GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error) {
	return s.standards.GetStandard(ctx, id)
}

func (s *service) ListStandards(ctx context.Context, activeOnly bool) ([]*standards.Standard, error) {
	return s.standards.ListStandards(ctx, activeOnly)
}

func (s *service) ReviseStandard(ctx context.Context, standardID uuid.UUID, version, changeNotes string) (*standards.StandardVersion, error) {
	if version == "" {
		return nil, errors.NewValidationError("INVALID_VERSION", "revision version is required")
	}
	standard, err := s.standards.GetStandard(ctx, standardID)
	if err != nil {
		return nil, err
	}
	if standard.Version == version {
		return nil, errors.NewConflictError("standard is already at version " + version)
	}

	revision := &standards.StandardVersion{
		ID:          uuid.New(),
		StandardID:  standard.ID,
		Version:     version,
		PublishedAt: time.Now(),
		ChangeNotes: changeNotes,
		CreatedAt:   time.Now(),
	}
	if err := s.standards.AddVersion(ctx, revision); err != nil {
		return nil, errors.NewInternalError("failed to record standard revision").WithCause(err)
	}

	standard.Version = version
	standard.UpdatedAt = time.Now()
	if err := s.standards.UpdateStandard(ctx, standard); err != nil {
		return nil, errors.NewInternalError("failed to move standard version pointer").WithCause(err)
	}

	s.logger.Info("standard revised",
		zap.String("slug", standard.Slug),
		zap.String("version", version),
	)
	return revision, nil
}

func (s *service) DeactivateStandard(ctx context.Context, standardID uuid.UUID) error {
	standard, err := s.standards.GetStandard(ctx, standardID)
	if err != nil {
		return err
	}
	if err := standard.Deactivate(); err != nil {
		return err
	}
	return s.standards.UpdateStandard(ctx, standard)
}

func (s *service) ReactivateStandard(ctx context.Context, standardID uuid.UUID) error {
	standard, err := s.standards.GetStandard(ctx, standardID)
	if err != nil {
		return err
	}
	if err := standard.Reactivate(); err != nil {
		return err
	}
	return s.standards.UpdateStandard(ctx, standard)
}

func (s *service) AddRequirement(ctx context.Context, req AddRequirementRequest) (*standards.Requirement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", err.Error())
	}
	if _, err := s.standards.GetStandard(ctx, req.StandardID); err != nil {
		return nil, err
	}
	// codes are unique per standard, not globally
	if existing, err := s.requirements.GetRequirementByCode(ctx, req.StandardID, req.Code); err == nil && existing != nil {
		return nil, errors.NewConflictError("requirement code " + req.Code + " already exists in this standard")
	} else if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	requirement, err := standards.NewRequirement(req.StandardID, req.Code, req.Title, req.OfficialDescription, req.Priority)
	if err != nil {
		return nil, err
	}
	requirement.Section = req.Section
	requirement.ApplicableGroups = req.ApplicableGroups
	requirement.Tags = req.Tags

	if err := s.requirements.CreateRequirement(ctx, requirement); err != nil {
		return nil, errors.NewInternalError("failed to persist requirement").WithCause(err)
	}
	return requirement, nil
}

func (s *service) GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error) {
	return s.requirements.GetRequirementByCode(ctx, standardID, code)
}

func (s *service) ListRequirements(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error) {
	return s.requirements.ListByStandard(ctx, standardID)
}

func (s *service) DeactivateRequirement(ctx context.Context, requirementID uuid.UUID) error {
	requirement, err := s.requirements.GetRequirement(ctx, requirementID)
	if err != nil {
		return err
	}
	if err := requirement.Deactivate(); err != nil {
		return err
	}
	return s.requirements.UpdateRequirement(ctx, requirement)
}
