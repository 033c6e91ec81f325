package guidance

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/guidance"
	"github.com/auditready/auditready-backend/internal/testutil"
)

type testHarness struct {
	svc         *service
	versions    *mockVersionRepository
	suggestions *mockSuggestionRepository
	knowledge   *mockKnowledgeRepository
	ai          *mockAIClient
	cache       *mockPublishedCache
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		versions:    &mockVersionRepository{},
		suggestions: &mockSuggestionRepository{},
		knowledge:   &mockKnowledgeRepository{},
		ai:          &mockAIClient{},
		cache:       newMockPublishedCache(),
	}
	cfg := DefaultConfig()
	cfg.AIRequestsPerMinute = 6000
	h.svc = NewService(zaptest.NewLogger(t), h.versions, h.suggestions, h.knowledge, h.ai, h.cache, cfg).(*service)
	return h
}

func sentence(words int) string {
	return strings.TrimSpace(strings.Repeat("auditors verify control evidence ", (words+3)/4))
}

func contentBlocks(n, wordsPerBlock int) []guidance.Block {
	blocks := make([]guidance.Block, n)
	for i := range blocks {
		kind := guidance.BlockBaseline
		if i == 0 {
			kind = guidance.BlockIntro
		}
		blocks[i] = guidance.Block{
			ID:      uuid.New(),
			Order:   i + 1,
			Kind:    kind,
			Content: sentence(wordsPerBlock),
		}
	}
	return blocks
}

func draftVersion(t *testing.T, blocks []guidance.Block) *guidance.Version {
	t.Helper()
	v, err := guidance.NewDraftVersion(uuid.New(), 1, blocks, guidance.DefaultRowCap, uuid.New())
	require.NoError(t, err)
	return v
}

func approvedVersion(t *testing.T) *guidance.Version {
	t.Helper()
	v := draftVersion(t, contentBlocks(3, 30))
	require.NoError(t, v.SubmitForReview(uuid.New()))
	require.NoError(t, v.MarkReviewed(uuid.New()))
	require.NoError(t, v.Approve(uuid.New()))
	return v
}

func TestService_CreateDraftVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates next number and persists", func(t *testing.T) {
		h := newTestHarness(t)
		reqID := uuid.New()

		h.versions.On("NextVersionNumber", ctx, reqID).Return(4, nil)
		h.versions.On("CreateVersion", ctx, mock.AnythingOfType("*guidance.Version")).Return(nil)

		v, err := h.svc.CreateDraftVersion(ctx, reqID, contentBlocks(3, 20), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 4, v.VersionNumber)
		assert.Equal(t, guidance.StatusDraft, v.Status)
		h.versions.AssertExpectations(t)
	})

	t.Run("rejects content above the row cap", func(t *testing.T) {
		h := newTestHarness(t)
		reqID := uuid.New()

		h.versions.On("NextVersionNumber", ctx, reqID).Return(1, nil)

		_, err := h.svc.CreateDraftVersion(ctx, reqID, contentBlocks(11, 20), uuid.New())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeContentConstraint))
		h.versions.AssertNotCalled(t, "CreateVersion", ctx, mock.Anything)
	})
}

func TestService_UpdateDraftBlocks(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces content under matching base hash", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(2, 20))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.versions.On("UpdateDraftContent", ctx, v).Return(nil)

		updated, err := h.svc.UpdateDraftBlocks(ctx, v.ID, contentBlocks(3, 20), v.ContentHash, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 3, updated.RowCount)
	})

	t.Run("stale base hash is a concurrent modification", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(2, 20))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)

		_, err := h.svc.UpdateDraftBlocks(ctx, v.ID, contentBlocks(3, 20), "stale", uuid.New())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConcurrentModification))
		h.versions.AssertNotCalled(t, "UpdateDraftContent", ctx, mock.Anything)
	})
}

func TestService_SubmitForReview(t *testing.T) {
	ctx := context.Background()

	t.Run("passes gates and records transition", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.versions.On("SaveWithTransition", ctx, v, mock.AnythingOfType("*guidance.Transition")).Return(nil)

		require.NoError(t, h.svc.SubmitForReview(ctx, v.ID, uuid.New()))
		assert.Equal(t, guidance.StatusInReview, v.Status)
		h.versions.AssertExpectations(t)
	})

	t.Run("blocks thin content", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(1, 5))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)

		err := h.svc.SubmitForReview(ctx, v.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeContentConstraint))
		assert.Equal(t, guidance.StatusDraft, v.Status)
	})
}

func TestService_ApproveRequiresReview(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	v := draftVersion(t, contentBlocks(3, 30))
	require.NoError(t, v.SubmitForReview(uuid.New()))

	h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)

	err := h.svc.Approve(ctx, v.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSequence))

	require.NoError(t, v.MarkReviewed(uuid.New()))
	h.versions.On("SaveWithTransition", ctx, v, mock.AnythingOfType("*guidance.Transition")).Return(nil)
	require.NoError(t, h.svc.Approve(ctx, v.ID, uuid.New()))
	assert.Equal(t, guidance.StatusApproved, v.Status)
}

func TestService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes immediately and invalidates cache", func(t *testing.T) {
		h := newTestHarness(t)
		v := approvedVersion(t)
		stale := &guidance.Version{UnifiedRequirementID: v.UnifiedRequirementID}
		h.cache.Set(ctx, stale)

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.versions.On("PublishWithTransition", ctx, v, mock.AnythingOfType("*guidance.Transition")).Return(nil)

		require.NoError(t, h.svc.Publish(ctx, v.ID, uuid.New(), nil))
		assert.Equal(t, guidance.StatusPublished, v.Status)
		require.NotNil(t, v.PublishedAt)
		testutil.AssertTimeWithin(t, *v.PublishedAt, time.Now(), time.Second)

		_, ok := h.cache.Get(ctx, v.UnifiedRequirementID)
		assert.False(t, ok)
	})

	t.Run("schedules a future publish without changing status", func(t *testing.T) {
		h := newTestHarness(t)
		v := approvedVersion(t)

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.versions.On("UpdateDraftContent", ctx, v).Return(nil)

		require.NoError(t, h.svc.Publish(ctx, v.ID, uuid.New(), testutil.Ptr(time.Now().Add(24*time.Hour))))
		assert.Equal(t, guidance.StatusApproved, v.Status)
		require.NotNil(t, v.ScheduledPublishAt)
		h.versions.AssertNotCalled(t, "PublishWithTransition", ctx, mock.Anything, mock.Anything)
	})

	t.Run("refuses to publish an unapproved version", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)

		err := h.svc.Publish(ctx, v.ID, uuid.New(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState))
	})
}

func TestService_PromoteScheduled(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	now := time.Now()

	due := approvedVersion(t)
	at := now.Add(-time.Hour)
	due.ScheduledPublishAt = &at

	// missing approval trail, must be skipped not published
	broken := draftVersion(t, contentBlocks(3, 30))
	broken.Status = guidance.StatusApproved

	h.versions.On("ListScheduledBefore", ctx, now).Return([]*guidance.Version{due, broken}, nil)
	h.versions.On("PublishWithTransition", ctx, due, mock.AnythingOfType("*guidance.Transition")).Return(nil)

	promoted, err := h.svc.PromoteScheduled(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)
	assert.Equal(t, guidance.StatusPublished, due.Status)
	assert.Nil(t, due.ScheduledPublishAt)
}

func TestService_ProposeAISuggestion(t *testing.T) {
	ctx := context.Background()

	proposal := func(v *guidance.Version) ProposalRequest {
		return ProposalRequest{
			VersionID:     v.ID,
			TargetBlockID: &v.Blocks[1].ID,
			Type:          guidance.SuggestionEnhancement,
			Impact:        guidance.ImpactClarity,
			ActorID:       uuid.New(),
		}
	}

	t.Run("persists a grounded suggestion", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		chunk := uuid.New()

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.ai.On("Generate", mock.Anything, mock.AnythingOfType("GenerationRequest")).Return(&GenerationResult{
			SuggestedContent: sentence(40),
			Rationale:        "tightens the control language",
			Confidence:       0.83,
			ModelID:          "guidance-gen-2",
			Citations: []GeneratedCitation{
				{SourceChunkID: chunk, RelevanceScore: 0.9, ContextText: "ISO 27001 A.5.15"},
			},
		}, nil)
		h.knowledge.On("MissingChunks", ctx, []uuid.UUID{chunk}).Return([]uuid.UUID{}, nil)
		h.suggestions.On("CreateSuggestion", ctx, mock.AnythingOfType("*guidance.Suggestion")).Return(nil)

		s, err := h.svc.ProposeAISuggestion(ctx, proposal(v))
		require.NoError(t, err)
		assert.Equal(t, guidance.SuggestionPending, s.ReviewStatus)
		assert.Equal(t, v.Blocks[1].Content, s.OriginalContent)
		assert.Equal(t, "guidance-gen-2", s.ModelID)
		require.Len(t, s.Citations, 1)
		assert.Equal(t, s.ID, *s.Citations[0].SuggestionID)
		h.suggestions.AssertExpectations(t)
	})

	t.Run("uncited generation is rejected before persistence", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.ai.On("Generate", mock.Anything, mock.AnythingOfType("GenerationRequest")).Return(&GenerationResult{
			SuggestedContent: sentence(40),
			Confidence:       0.7,
		}, nil)

		_, err := h.svc.ProposeAISuggestion(ctx, proposal(v))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeCitationRequired))
		h.suggestions.AssertNotCalled(t, "CreateSuggestion", ctx, mock.Anything)
	})

	t.Run("citations must resolve against the knowledge corpus", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		chunk := uuid.New()

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.ai.On("Generate", mock.Anything, mock.AnythingOfType("GenerationRequest")).Return(&GenerationResult{
			SuggestedContent: sentence(40),
			Confidence:       0.7,
			Citations: []GeneratedCitation{
				{SourceChunkID: chunk, RelevanceScore: 0.5},
			},
		}, nil)
		h.knowledge.On("MissingChunks", ctx, []uuid.UUID{chunk}).Return([]uuid.UUID{chunk}, nil)

		_, err := h.svc.ProposeAISuggestion(ctx, proposal(v))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeCitationRequired))
		h.suggestions.AssertNotCalled(t, "CreateSuggestion", ctx, mock.Anything)
	})

	t.Run("generation failure surfaces as external error", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))

		h.versions.On("GetVersion", ctx, v.ID).Return(v, nil)
		h.ai.On("Generate", mock.Anything, mock.AnythingOfType("GenerationRequest")).
			Return(nil, context.DeadlineExceeded)

		_, err := h.svc.ProposeAISuggestion(ctx, proposal(v))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	})
}

func TestService_ReviewAndApplySuggestion(t *testing.T) {
	ctx := context.Background()

	newApprovedSuggestion := func(t *testing.T, v *guidance.Version, targetBlock *uuid.UUID, kind guidance.SuggestionType) *guidance.Suggestion {
		t.Helper()
		chunk := uuid.New()
		s, err := guidance.NewSuggestion(v.ID, targetBlock, kind, guidance.ImpactClarity,
			sentence(40), "clearer phrasing", 0.8, []uuid.UUID{chunk})
		require.NoError(t, err)
		c, err := guidance.NewSuggestionCitation(s.ID, chunk, 0.9, "source passage")
		require.NoError(t, err)
		require.NoError(t, s.AttachCitations([]guidance.Citation{*c}))
		require.NoError(t, s.Approve(uuid.New(), "looks right"))
		return s
	}

	t.Run("approving a pending suggestion persists the decision", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		chunk := uuid.New()
		s, err := guidance.NewSuggestion(v.ID, &v.Blocks[1].ID, guidance.SuggestionEnhancement,
			guidance.ImpactClarity, sentence(40), "", 0.8, []uuid.UUID{chunk})
		require.NoError(t, err)

		h.suggestions.On("GetSuggestion", ctx, s.ID).Return(s, nil)
		h.suggestions.On("UpdateSuggestion", ctx, s).Return(nil)

		require.NoError(t, h.svc.ReviewSuggestion(ctx, s.ID, guidance.SuggestionApproved, uuid.New(), "ok"))
		assert.Equal(t, guidance.SuggestionApproved, s.ReviewStatus)
	})

	t.Run("folds a replacement into a new draft", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		s := newApprovedSuggestion(t, v, &v.Blocks[1].ID, guidance.SuggestionReplacement)

		h.suggestions.On("GetSuggestion", ctx, s.ID).Return(s, nil)
		h.versions.On("GetVersion", ctx, s.VersionID).Return(v, nil)
		h.versions.On("NextVersionNumber", ctx, v.UnifiedRequirementID).Return(2, nil)
		h.versions.On("CreateVersion", ctx, mock.AnythingOfType("*guidance.Version")).Return(nil)

		draft, err := h.svc.ApplySuggestion(ctx, s.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 2, draft.VersionNumber)
		assert.Equal(t, guidance.StatusDraft, draft.Status)
		require.Len(t, draft.Blocks, 3)

		// source version stays untouched
		assert.NotEqual(t, s.SuggestedContent, v.Blocks[1].Content)

		folded := draft.Blocks[1]
		assert.Equal(t, s.SuggestedContent, folded.Content)
		require.NotNil(t, folded.AI)
		assert.Equal(t, s.ModelID, folded.AI.ModelID)
		require.Len(t, folded.Citations, 1)
		assert.Equal(t, folded.ID, *folded.Citations[0].BlockID)
	})

	t.Run("folds an addition as a trailing block", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		s := newApprovedSuggestion(t, v, nil, guidance.SuggestionAddition)

		h.suggestions.On("GetSuggestion", ctx, s.ID).Return(s, nil)
		h.versions.On("GetVersion", ctx, s.VersionID).Return(v, nil)
		h.versions.On("NextVersionNumber", ctx, v.UnifiedRequirementID).Return(2, nil)
		h.versions.On("CreateVersion", ctx, mock.AnythingOfType("*guidance.Version")).Return(nil)

		draft, err := h.svc.ApplySuggestion(ctx, s.ID, uuid.New())
		require.NoError(t, err)
		require.Len(t, draft.Blocks, 4)
		assert.Equal(t, 4, draft.Blocks[3].Order)
		assert.Equal(t, s.SuggestedContent, draft.Blocks[3].Content)
	})

	t.Run("refuses to apply a pending suggestion", func(t *testing.T) {
		h := newTestHarness(t)
		v := draftVersion(t, contentBlocks(3, 30))
		chunk := uuid.New()
		s, err := guidance.NewSuggestion(v.ID, &v.Blocks[0].ID, guidance.SuggestionEnhancement,
			guidance.ImpactClarity, sentence(40), "", 0.8, []uuid.UUID{chunk})
		require.NoError(t, err)

		h.suggestions.On("GetSuggestion", ctx, s.ID).Return(s, nil)

		_, err = h.svc.ApplySuggestion(ctx, s.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState))
	})
}

func TestService_GetLatestPublished(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	v := approvedVersion(t)
	require.NoError(t, v.Publish(uuid.New()))

	h.versions.On("GetLatestPublished", ctx, v.UnifiedRequirementID).Return(v, nil).Once()

	got, err := h.svc.GetLatestPublished(ctx, v.UnifiedRequirementID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	// second read is served from cache
	got, err = h.svc.GetLatestPublished(ctx, v.UnifiedRequirementID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	h.versions.AssertExpectations(t)
}
