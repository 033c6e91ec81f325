package orgreq

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/orgreq"
)

type service struct {
	logger        *zap.Logger
	instances     InstanceRepository
	organizations OrganizationRepository
	library       LibraryReader
}

var _ Service = (*service)(nil)

// NewService creates the organization requirement service
func NewService(logger *zap.Logger, instances InstanceRepository, organizations OrganizationRepository, library LibraryReader) Service {
	return &service{
		logger:        logger,
		instances:     instances,
		organizations: organizations,
		library:       library,
	}
}

func (s *service) SubscribeToStandard(ctx context.Context, organizationID, standardID uuid.UUID) (*SubscriptionResult, error) {
	if _, err := s.organizations.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.fanOut(ctx, organizationID, standardID)
}

func (s *service) fanOut(ctx context.Context, organizationID, standardID uuid.UUID) (*SubscriptionResult, error) {
	standard, err := s.library.GetStandard(ctx, standardID)
	if err != nil {
		return nil, err
	}
	if !standard.IsActive {
		return nil, errors.NewConflictError("cannot subscribe to an inactive standard")
	}

	requirements, err := s.library.ListActiveRequirements(ctx, standardID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list standard requirements").WithCause(err)
	}

	batch := make([]*orgreq.Requirement, 0, len(requirements))
	for _, req := range requirements {
		instance, err := orgreq.NewRequirement(organizationID, req.ID, standardID)
		if err != nil {
			return nil, err
		}
		batch = append(batch, instance)
	}

	created, err := s.instances.CreateInstances(ctx, batch)
	if err != nil {
		return nil, errors.NewInternalError("failed to create requirement instances").WithCause(err)
	}

	result := &SubscriptionResult{
		OrganizationID: organizationID,
		StandardID:     standardID,
		Created:        created,
		AlreadyTracked: len(batch) - created,
	}
	s.logger.Info("organization subscribed to standard",
		zap.String("organization_id", organizationID.String()),
		zap.String("standard", standard.DisplayName()),
		zap.Int("created", result.Created),
		zap.Int("already_tracked", result.AlreadyTracked),
	)
	return result, nil
}

func (s *service) GetInstance(ctx context.Context, id uuid.UUID) (*orgreq.Requirement, error) {
	return s.instances.GetInstance(ctx, id)
}

func (s *service) ListByOrganization(ctx context.Context, organizationID uuid.UUID, standardID *uuid.UUID) ([]*orgreq.Requirement, error) {
	return s.instances.ListByOrganization(ctx, organizationID, standardID)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status orgreq.FulfillmentStatus, fulfillment decimal.Decimal, expectedVersion int) (*orgreq.Requirement, error) {
	return s.mutate(ctx, id, func(r *orgreq.Requirement) error {
		return r.UpdateStatus(status, fulfillment, expectedVersion)
	})
}

func (s *service) AttachEvidence(ctx context.Context, id uuid.UUID, evidence string, urls []string, expectedVersion int) (*orgreq.Requirement, error) {
	return s.mutate(ctx, id, func(r *orgreq.Requirement) error {
		return r.AttachEvidence(evidence, urls, expectedVersion)
	})
}

func (s *service) AssignResponsible(ctx context.Context, id uuid.UUID, party string, expectedVersion int) (*orgreq.Requirement, error) {
	return s.mutate(ctx, id, func(r *orgreq.Requirement) error {
		return r.AssignResponsible(party, expectedVersion)
	})
}

func (s *service) MarkNotApplicable(ctx context.Context, id uuid.UUID, reason string, expectedVersion int) (*orgreq.Requirement, error) {
	return s.mutate(ctx, id, func(r *orgreq.Requirement) error {
		return r.MarkNotApplicable(reason, expectedVersion)
	})
}

func (s *service) mutate(ctx context.Context, id uuid.UUID, apply func(*orgreq.Requirement) error) (*orgreq.Requirement, error) {
	instance, err := s.instances.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(instance); err != nil {
		return nil, err
	}
	if err := s.instances.UpdateInstance(ctx, instance); err != nil {
		return nil, errors.NewInternalError("failed to persist requirement instance").WithCause(err)
	}
	return instance, nil
}

func (s *service) ReseedDemo(ctx context.Context, organizationID, standardID uuid.UUID) (*SubscriptionResult, error) {
	org, err := s.organizations.GetOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if !org.CanReseed() {
		return nil, errors.NewValidationError("NOT_A_DEMO_TENANT",
			"only demo tenants may be reseeded")
	}

	removed, err := s.instances.DeleteAllForOrganization(ctx, organizationID)
	if err != nil {
		return nil, errors.NewInternalError("failed to clear demo tenant data").WithCause(err)
	}
	s.logger.Info("demo tenant cleared for reseed",
		zap.String("organization_id", organizationID.String()),
		zap.Int("removed", removed),
	)
	return s.fanOut(ctx, organizationID, standardID)
}
