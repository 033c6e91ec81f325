package guidance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

type mockVersionRepository struct {
	mock.Mock
}

func (m *mockVersionRepository) GetVersion(ctx context.Context, id uuid.UUID) (*guidance.Version, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guidance.Version), args.Error(1)
}

func (m *mockVersionRepository) NextVersionNumber(ctx context.Context, unifiedRequirementID uuid.UUID) (int, error) {
	args := m.Called(ctx, unifiedRequirementID)
	return args.Int(0), args.Error(1)
}

func (m *mockVersionRepository) CreateVersion(ctx context.Context, v *guidance.Version) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVersionRepository) UpdateDraftContent(ctx context.Context, v *guidance.Version) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVersionRepository) SaveWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error {
	args := m.Called(ctx, v, tr)
	return args.Error(0)
}

func (m *mockVersionRepository) PublishWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error {
	args := m.Called(ctx, v, tr)
	return args.Error(0)
}

func (m *mockVersionRepository) GetLatestPublished(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, error) {
	args := m.Called(ctx, unifiedRequirementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guidance.Version), args.Error(1)
}

func (m *mockVersionRepository) ListScheduledBefore(ctx context.Context, cutoff time.Time) ([]*guidance.Version, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*guidance.Version), args.Error(1)
}

type mockSuggestionRepository struct {
	mock.Mock
}

func (m *mockSuggestionRepository) CreateSuggestion(ctx context.Context, s *guidance.Suggestion) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSuggestionRepository) GetSuggestion(ctx context.Context, id uuid.UUID) (*guidance.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*guidance.Suggestion), args.Error(1)
}

func (m *mockSuggestionRepository) UpdateSuggestion(ctx context.Context, s *guidance.Suggestion) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type mockKnowledgeRepository struct {
	mock.Mock
}

func (m *mockKnowledgeRepository) MissingChunks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GenerationResult), args.Error(1)
}

// mockPublishedCache is a map-backed cache double
type mockPublishedCache struct {
	store map[uuid.UUID]*guidance.Version
}

func newMockPublishedCache() *mockPublishedCache {
	return &mockPublishedCache{store: make(map[uuid.UUID]*guidance.Version)}
}

func (c *mockPublishedCache) Get(_ context.Context, id uuid.UUID) (*guidance.Version, bool) {
	v, ok := c.store[id]
	return v, ok
}

func (c *mockPublishedCache) Set(_ context.Context, v *guidance.Version) {
	c.store[v.UnifiedRequirementID] = v
}

func (c *mockPublishedCache) Invalidate(_ context.Context, id uuid.UUID) {
	delete(c.store, id)
}
