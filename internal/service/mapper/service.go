package mapper

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/unified"
	"github.com/auditready/auditready-backend/internal/metrics"
)

// Ensure service implements the interface
var _ Service = (*service)(nil)

type service struct {
	logger      *zap.Logger
	unifiedRepo UnifiedRepository
	libraryRepo LibraryRepository
	reporter    ReconcileReporter
	validate    *validator.Validate
}

// NewService creates a new mapper service
func NewService(logger *zap.Logger, unifiedRepo UnifiedRepository, libraryRepo LibraryRepository, reporter ReconcileReporter) Service {
	return &service{
		logger:      logger,
		unifiedRepo: unifiedRepo,
		libraryRepo: libraryRepo,
		reporter:    reporter,
		validate:    validator.New(),
	}
}

// MapRequirement inserts a mapping edge idempotently. Both endpoints must
// exist; inserting an already-present pair leaves the row untouched and
// reports Created=false so the caller can tell its strength was not applied.
func (s *service) MapRequirement(ctx context.Context, req MapRequest) (*MapResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidationError("INVALID_MAP_REQUEST", "invalid mapping request").WithCause(err)
	}

	logger := s.logger.With(
		zap.String("unified_requirement_id", req.UnifiedRequirementID.String()),
		zap.String("requirement_id", req.RequirementID.String()),
	)

	if _, err := s.unifiedRepo.GetRequirement(ctx, req.UnifiedRequirementID); err != nil {
		return nil, err
	}
	if _, err := s.libraryRepo.GetRequirement(ctx, req.RequirementID); err != nil {
		return nil, err
	}

	mapping, err := unified.NewMapping(req.UnifiedRequirementID, req.RequirementID, req.Strength, req.Notes)
	if err != nil {
		return nil, err
	}

	created, err := s.unifiedRepo.InsertMapping(ctx, mapping)
	if err != nil {
		return nil, errors.NewInternalError("failed to insert mapping").WithCause(err)
	}
	if !created {
		existing, err := s.unifiedRepo.GetMapping(ctx, req.UnifiedRequirementID, req.RequirementID)
		if err != nil {
			return nil, err
		}
		if existing.Strength != req.Strength {
			logger.Warn("mapping already exists with different strength; not overwriting",
				zap.String("existing_strength", existing.Strength.String()),
				zap.String("requested_strength", req.Strength.String()),
			)
		}
		return &MapResult{Mapping: existing, Created: false}, nil
	}

	metrics.MappingsCreated.Inc()
	logger.Info("mapping created", zap.String("strength", mapping.Strength.String()))
	return &MapResult{Mapping: mapping, Created: true}, nil
}

// RestrengthMapping changes an existing mapping's strength as an explicit
// operation with its own audit note.
func (s *service) RestrengthMapping(ctx context.Context, unifiedID, requirementID uuid.UUID, strength unified.MappingStrength, note string) (*unified.Mapping, error) {
	mapping, err := s.unifiedRepo.GetMapping(ctx, unifiedID, requirementID)
	if err != nil {
		return nil, err
	}
	if err := mapping.Restrength(strength, note); err != nil {
		return nil, err
	}
	if err := s.unifiedRepo.UpdateMapping(ctx, mapping); err != nil {
		return nil, errors.NewInternalError("failed to update mapping").WithCause(err)
	}
	s.logger.Info("mapping strength changed",
		zap.String("unified_requirement_id", unifiedID.String()),
		zap.String("requirement_id", requirementID.String()),
		zap.String("strength", strength.String()),
	)
	return mapping, nil
}

// RemapRequirement moves a requirement's edge between unified requirements.
// The repository performs the delete+insert in one transaction so a failure
// leaves the original mapping intact. Strength and notes travel with the
// edge; the rationale goes to the audit log.
func (s *service) RemapRequirement(ctx context.Context, fromUnifiedID, toUnifiedID, requirementID uuid.UUID, rationale string) error {
	if fromUnifiedID == toUnifiedID {
		return errors.NewValidationError("INVALID_REMAP", "source and destination unified requirements are identical")
	}

	if _, err := s.unifiedRepo.GetRequirement(ctx, toUnifiedID); err != nil {
		return err
	}
	if _, err := s.unifiedRepo.GetMapping(ctx, fromUnifiedID, requirementID); err != nil {
		return err
	}

	if err := s.unifiedRepo.MoveMapping(ctx, fromUnifiedID, toUnifiedID, requirementID); err != nil {
		return errors.NewInternalError("failed to move mapping").WithCause(err)
	}

	metrics.MappingsRemapped.Inc()
	s.logger.Info("requirement remapped",
		zap.String("requirement_id", requirementID.String()),
		zap.String("from_unified_id", fromUnifiedID.String()),
		zap.String("to_unified_id", toUnifiedID.String()),
		zap.String("rationale", rationale),
	)
	return nil
}

// ResolveCategoryForRequirement follows the FK when present, falls back to a
// case-insensitive name match on the text column, and fails when the two
// paths disagree. Disagreement is surfaced, never swallowed: historical data
// carries both columns and they drift.
func (s *service) ResolveCategoryForRequirement(ctx context.Context, requirementID uuid.UUID) (*unified.Category, error) {
	req, err := s.libraryRepo.GetRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		category, err := s.unifiedRepo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if req.Category != "" && !req.CategoryConsistent(category.Name) {
			return nil, errors.NewAmbiguousCategoryError(category.Name, req.Category)
		}
		return category, nil
	}

	if req.Category != "" {
		category, err := s.unifiedRepo.FindCategoryByName(ctx, req.Category)
		if err == nil {
			return category, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	return nil, errors.NewCategoryUnresolvedError(req.Category)
}
