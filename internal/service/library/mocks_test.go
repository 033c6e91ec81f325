package library

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditready/auditready-backend/internal/domain/standards"
)

type mockStandardRepository struct {
	mock.Mock
}

func (m *mockStandardRepository) GetStandard(ctx context.Context, id uuid.UUID) (*standards.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Standard), args.Error(1)
}

func (m *mockStandardRepository) GetStandardBySlug(ctx context.Context, slug string) (*standards.Standard, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Standard), args.Error(1)
}

func (m *mockStandardRepository) ListStandards(ctx context.Context, activeOnly bool) ([]*standards.Standard, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.Standard), args.Error(1)
}

func (m *mockStandardRepository) CreateStandard(ctx context.Context, s *standards.Standard) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStandardRepository) UpdateStandard(ctx context.Context, s *standards.Standard) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStandardRepository) UpsertStandard(ctx context.Context, s *standards.Standard) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *mockStandardRepository) AddVersion(ctx context.Context, v *standards.StandardVersion) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockStandardRepository) ListVersions(ctx context.Context, standardID uuid.UUID) ([]*standards.StandardVersion, error) {
	args := m.Called(ctx, standardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.StandardVersion), args.Error(1)
}

type mockRequirementRepository struct {
	mock.Mock
}

func (m *mockRequirementRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*standards.Requirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Requirement), args.Error(1)
}

func (m *mockRequirementRepository) GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error) {
	args := m.Called(ctx, standardID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Requirement), args.Error(1)
}

func (m *mockRequirementRepository) ListByStandard(ctx context.Context, standardID uuid.UUID) ([]*standards.Requirement, error) {
	args := m.Called(ctx, standardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.Requirement), args.Error(1)
}

func (m *mockRequirementRepository) CreateRequirement(ctx context.Context, r *standards.Requirement) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRequirementRepository) UpdateRequirement(ctx context.Context, r *standards.Requirement) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockRequirementRepository) UpsertRequirement(ctx context.Context, r *standards.Requirement) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}
