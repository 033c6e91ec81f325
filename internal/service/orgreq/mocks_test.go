package orgreq

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditready/auditready-backend/internal/domain/orgreq"
	"github.com/auditready/auditready-backend/internal/domain/standards"
	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

type mockInstanceRepository struct {
	mock.Mock
}

func (m *mockInstanceRepository) GetInstance(ctx context.Context, id uuid.UUID) (*orgreq.Requirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orgreq.Requirement), args.Error(1)
}

func (m *mockInstanceRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, standardID *uuid.UUID) ([]*orgreq.Requirement, error) {
	args := m.Called(ctx, organizationID, standardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orgreq.Requirement), args.Error(1)
}

func (m *mockInstanceRepository) CreateInstances(ctx context.Context, instances []*orgreq.Requirement) (int, error) {
	args := m.Called(ctx, instances)
	return args.Int(0), args.Error(1)
}

func (m *mockInstanceRepository) UpdateInstance(ctx context.Context, r *orgreq.Requirement) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockInstanceRepository) DeleteAllForOrganization(ctx context.Context, organizationID uuid.UUID) (int, error) {
	args := m.Called(ctx, organizationID)
	return args.Int(0), args.Error(1)
}

type mockOrganizationRepository struct {
	mock.Mock
}

func (m *mockOrganizationRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*tenant.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Organization), args.Error(1)
}

type mockLibraryReader struct {
	mock.Mock
}

func (m *mockLibraryReader) GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Standard), args.Error(1)
}

func (m *mockLibraryReader) ListActiveRequirements(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error) {
	args := m.Called(ctx, standardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.Requirement), args.Error(1)
}
