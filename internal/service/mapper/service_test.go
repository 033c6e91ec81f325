package mapper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/standards"
	"github.com/auditready/auditready-backend/internal/domain/unified"
)

func newTestService(t *testing.T) (*service, *mockUnifiedRepository, *mockLibraryRepository, *mockReconcileReporter) {
	t.Helper()
	unifiedRepo := &mockUnifiedRepository{}
	libraryRepo := &mockLibraryRepository{}
	reporter := &mockReconcileReporter{}
	svc := NewService(zaptest.NewLogger(t), unifiedRepo, libraryRepo, reporter).(*service)
	return svc, unifiedRepo, libraryRepo, reporter
}

func testUnifiedRequirement(t *testing.T) *unified.Requirement {
	t.Helper()
	r, err := unified.NewRequirement(uuid.New(), "Identity & Access Governance", "", []string{"a statement"})
	require.NoError(t, err)
	return r
}

func testLibraryRequirement(t *testing.T) *standards.Requirement {
	t.Helper()
	r, err := standards.NewRequirement(uuid.New(), "A.5.15", "Access control", "desc", standards.PriorityHigh)
	require.NoError(t, err)
	return r
}

func TestService_MapRequirement(t *testing.T) {
	ctx := context.Background()

	t.Run("creates new mapping", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		ur := testUnifiedRequirement(t)
		lr := testLibraryRequirement(t)

		unifiedRepo.On("GetRequirement", ctx, ur.ID).Return(ur, nil)
		libraryRepo.On("GetRequirement", ctx, lr.ID).Return(lr, nil)
		unifiedRepo.On("InsertMapping", ctx, mock.AnythingOfType("*unified.Mapping")).Return(true, nil)

		res, err := svc.MapRequirement(ctx, MapRequest{
			UnifiedRequirementID: ur.ID,
			RequirementID:        lr.ID,
			Strength:             unified.StrengthStrong,
			Notes:                "covers a-c",
		})
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, unified.StrengthStrong, res.Mapping.Strength)
		unifiedRepo.AssertExpectations(t)
	})

	t.Run("idempotent on duplicate pair", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		ur := testUnifiedRequirement(t)
		lr := testLibraryRequirement(t)
		existing, err := unified.NewMapping(ur.ID, lr.ID, unified.StrengthExact, "first")
		require.NoError(t, err)

		unifiedRepo.On("GetRequirement", ctx, ur.ID).Return(ur, nil)
		libraryRepo.On("GetRequirement", ctx, lr.ID).Return(lr, nil)
		unifiedRepo.On("InsertMapping", ctx, mock.AnythingOfType("*unified.Mapping")).Return(false, nil)
		unifiedRepo.On("GetMapping", ctx, ur.ID, lr.ID).Return(existing, nil)

		// second call with a different strength leaves the existing row
		// untouched and says so: the caller sees Created=false and the
		// stored strength, not the one it asked for
		res, err := svc.MapRequirement(ctx, MapRequest{
			UnifiedRequirementID: ur.ID,
			RequirementID:        lr.ID,
			Strength:             unified.StrengthPartial,
		})
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, unified.StrengthExact, res.Mapping.Strength)
		assert.Equal(t, existing.ID, res.Mapping.ID)
	})

	t.Run("missing unified requirement", func(t *testing.T) {
		svc, unifiedRepo, _, _ := newTestService(t)
		unifiedID := uuid.New()

		unifiedRepo.On("GetRequirement", ctx, unifiedID).
			Return(nil, errors.NewNotFoundError("unified requirement"))

		_, err := svc.MapRequirement(ctx, MapRequest{
			UnifiedRequirementID: unifiedID,
			RequirementID:        uuid.New(),
			Strength:             unified.StrengthExact,
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("invalid strength rejected before repo access", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.MapRequirement(ctx, MapRequest{
			UnifiedRequirementID: uuid.New(),
			RequirementID:        uuid.New(),
			Strength:             unified.MappingStrength("weak"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})
}

func TestService_RestrengthMapping(t *testing.T) {
	ctx := context.Background()
	svc, unifiedRepo, _, _ := newTestService(t)

	m, err := unified.NewMapping(uuid.New(), uuid.New(), unified.StrengthPartial, "initial")
	require.NoError(t, err)

	unifiedRepo.On("GetMapping", ctx, m.UnifiedRequirementID, m.RequirementID).Return(m, nil)
	unifiedRepo.On("UpdateMapping", ctx, m).Return(nil)

	updated, err := svc.RestrengthMapping(ctx, m.UnifiedRequirementID, m.RequirementID, unified.StrengthExact, "re-reviewed")
	require.NoError(t, err)
	assert.Equal(t, unified.StrengthExact, updated.Strength)

	// note is mandatory
	_, err = svc.RestrengthMapping(ctx, m.UnifiedRequirementID, m.RequirementID, unified.StrengthPartial, "")
	require.Error(t, err)
}

func TestService_RemapRequirement(t *testing.T) {
	ctx := context.Background()

	t.Run("moves edge", func(t *testing.T) {
		svc, unifiedRepo, _, _ := newTestService(t)
		from := uuid.New()
		to := testUnifiedRequirement(t)
		reqID := uuid.New()
		m, err := unified.NewMapping(from, reqID, unified.StrengthStrong, "")
		require.NoError(t, err)

		unifiedRepo.On("GetRequirement", ctx, to.ID).Return(to, nil)
		unifiedRepo.On("GetMapping", ctx, from, reqID).Return(m, nil)
		unifiedRepo.On("MoveMapping", ctx, from, to.ID, reqID).Return(nil)

		require.NoError(t, svc.RemapRequirement(ctx, from, to.ID, reqID, "thematic home corrected"))
		unifiedRepo.AssertExpectations(t)
	})

	t.Run("rejects self remap", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		id := uuid.New()
		err := svc.RemapRequirement(ctx, id, id, uuid.New(), "")
		require.Error(t, err)
	})

	t.Run("missing source mapping", func(t *testing.T) {
		svc, unifiedRepo, _, _ := newTestService(t)
		to := testUnifiedRequirement(t)
		from := uuid.New()
		reqID := uuid.New()

		unifiedRepo.On("GetRequirement", ctx, to.ID).Return(to, nil)
		unifiedRepo.On("GetMapping", ctx, from, reqID).
			Return(nil, errors.NewNotFoundError("mapping"))

		err := svc.RemapRequirement(ctx, from, to.ID, reqID, "")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestService_ResolveCategoryForRequirement(t *testing.T) {
	ctx := context.Background()

	category, err := unified.NewCategory("Access Control", "", 1)
	require.NoError(t, err)

	t.Run("resolves via FK when consistent", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		req := testLibraryRequirement(t)
		require.NoError(t, req.SetCategory(category.ID, "Access Control"))

		libraryRepo.On("GetRequirement", ctx, req.ID).Return(req, nil)
		unifiedRepo.On("GetCategory", ctx, category.ID).Return(category, nil)

		got, err := svc.ResolveCategoryForRequirement(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, category.ID, got.ID)
	})

	t.Run("surfaces FK text disagreement", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		req := testLibraryRequirement(t)
		require.NoError(t, req.SetCategory(category.ID, "Access Control"))
		// text drifted after the FK was set
		req.Category = "Network Security"

		libraryRepo.On("GetRequirement", ctx, req.ID).Return(req, nil)
		unifiedRepo.On("GetCategory", ctx, category.ID).Return(category, nil)

		_, err := svc.ResolveCategoryForRequirement(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAmbiguousCategory))
	})

	t.Run("falls back to name match", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		req := testLibraryRequirement(t)
		req.Category = "access control"

		libraryRepo.On("GetRequirement", ctx, req.ID).Return(req, nil)
		unifiedRepo.On("FindCategoryByName", ctx, "access control").Return(category, nil)

		got, err := svc.ResolveCategoryForRequirement(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, category.ID, got.ID)
	})

	t.Run("unresolvable category", func(t *testing.T) {
		svc, unifiedRepo, libraryRepo, _ := newTestService(t)
		req := testLibraryRequirement(t)
		req.Category = "Quantum Security"

		libraryRepo.On("GetRequirement", ctx, req.ID).Return(req, nil)
		unifiedRepo.On("FindCategoryByName", ctx, "Quantum Security").
			Return(nil, errors.NewNotFoundError("category"))

		_, err := svc.ResolveCategoryForRequirement(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAmbiguousCategory))
	})
}
