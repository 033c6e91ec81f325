package mapper

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditready/auditready-backend/internal/domain/standards"
	"github.com/auditready/auditready-backend/internal/domain/unified"
)

type mockUnifiedRepository struct {
	mock.Mock
}

func (m *mockUnifiedRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*unified.Requirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unified.Requirement), args.Error(1)
}

func (m *mockUnifiedRepository) GetCategory(ctx context.Context, id uuid.UUID) (*unified.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unified.Category), args.Error(1)
}

func (m *mockUnifiedRepository) FindCategoryByName(ctx context.Context, name string) (*unified.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unified.Category), args.Error(1)
}

func (m *mockUnifiedRepository) ListCategories(ctx context.Context) ([]*unified.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*unified.Category), args.Error(1)
}

func (m *mockUnifiedRepository) GetMapping(ctx context.Context, unifiedID, requirementID uuid.UUID) (*unified.Mapping, error) {
	args := m.Called(ctx, unifiedID, requirementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unified.Mapping), args.Error(1)
}

func (m *mockUnifiedRepository) InsertMapping(ctx context.Context, mapping *unified.Mapping) (bool, error) {
	args := m.Called(ctx, mapping)
	return args.Bool(0), args.Error(1)
}

func (m *mockUnifiedRepository) UpdateMapping(ctx context.Context, mapping *unified.Mapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *mockUnifiedRepository) MoveMapping(ctx context.Context, fromUnifiedID, toUnifiedID, requirementID uuid.UUID) error {
	args := m.Called(ctx, fromUnifiedID, toUnifiedID, requirementID)
	return args.Error(0)
}

type mockLibraryRepository struct {
	mock.Mock
}

func (m *mockLibraryRepository) GetRequirement(ctx context.Context, id uuid.UUID) (*standards.Requirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Requirement), args.Error(1)
}

func (m *mockLibraryRepository) GetRequirementByCode(ctx context.Context, standardID uuid.UUID, code string) (*standards.Requirement, error) {
	args := m.Called(ctx, standardID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standards.Requirement), args.Error(1)
}

func (m *mockLibraryRepository) ListMissingCategory(ctx context.Context) ([]*standards.Requirement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.Requirement), args.Error(1)
}

func (m *mockLibraryRepository) ListWithCategory(ctx context.Context) ([]*standards.Requirement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*standards.Requirement), args.Error(1)
}

func (m *mockLibraryRepository) SetCategory(ctx context.Context, requirementID, categoryID uuid.UUID, categoryName string) error {
	args := m.Called(ctx, requirementID, categoryID, categoryName)
	return args.Error(0)
}

type mockReconcileReporter struct {
	mock.Mock
	entries []*ReconcileEntry
}

func (m *mockReconcileReporter) SaveEntry(ctx context.Context, entry *ReconcileEntry) error {
	m.entries = append(m.entries, entry)
	args := m.Called(ctx, entry)
	return args.Error(0)
}
