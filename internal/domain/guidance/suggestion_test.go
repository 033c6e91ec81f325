package guidance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

func pendingSuggestion(t *testing.T) *Suggestion {
	t.Helper()
	blockID := uuid.New()
	s, err := NewSuggestion(uuid.New(), &blockID, SuggestionEnhancement, ImpactClarity,
		"Clarify the review cadence as quarterly.", "original is vague", 0.82,
		[]uuid.UUID{uuid.New()})
	require.NoError(t, err)

	citation, err := NewSuggestionCitation(s.ID, s.SourceChunks[0], 0.9, "corpus excerpt")
	require.NoError(t, err)
	require.NoError(t, s.AttachCitations([]Citation{*citation}))
	return s
}

func TestNewSuggestion_Validation(t *testing.T) {
	versionID := uuid.New()
	blockID := uuid.New()
	chunks := []uuid.UUID{uuid.New()}

	// empty source chunks is a citation failure, not a generic validation one
	_, err := NewSuggestion(versionID, &blockID, SuggestionReplacement, ImpactCompliance, "text", "r", 0.5, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCitationRequired))

	_, err = NewSuggestion(uuid.Nil, &blockID, SuggestionReplacement, ImpactCompliance, "text", "r", 0.5, chunks)
	require.Error(t, err)

	_, err = NewSuggestion(versionID, &blockID, SuggestionType("rewrite"), ImpactCompliance, "text", "r", 0.5, chunks)
	require.Error(t, err)

	_, err = NewSuggestion(versionID, &blockID, SuggestionReplacement, ImpactLabel("speed"), "text", "r", 0.5, chunks)
	require.Error(t, err)

	_, err = NewSuggestion(versionID, &blockID, SuggestionReplacement, ImpactCompliance, "text", "r", 1.5, chunks)
	require.Error(t, err)

	// only additions may omit the target block
	_, err = NewSuggestion(versionID, nil, SuggestionReplacement, ImpactCompliance, "text", "r", 0.5, chunks)
	require.Error(t, err)

	s, err := NewSuggestion(versionID, nil, SuggestionAddition, ImpactCompleteness, "Add a conditional NIS2 block.", "gap", 0.7, chunks)
	require.NoError(t, err)
	assert.Equal(t, SuggestionPending, s.ReviewStatus)
}

func TestSuggestion_AttachCitations(t *testing.T) {
	blockID := uuid.New()
	s, err := NewSuggestion(uuid.New(), &blockID, SuggestionCompression, ImpactDuplicationReduced,
		"Merge duplicate statements.", "b and d repeat", 0.75, []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	err = s.AttachCitations(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCitationRequired))

	// citation pointing at some other suggestion is rejected
	stray, err := NewSuggestionCitation(uuid.New(), uuid.New(), 0.6, "ctx")
	require.NoError(t, err)
	err = s.AttachCitations([]Citation{*stray})
	require.Error(t, err)

	own, err := NewSuggestionCitation(s.ID, s.SourceChunks[0], 0.6, "ctx")
	require.NoError(t, err)
	require.NoError(t, s.AttachCitations([]Citation{*own}))
	require.NoError(t, s.Validate())
}

func TestSuggestion_ReviewLifecycle(t *testing.T) {
	s := pendingSuggestion(t)
	reviewer := uuid.New()

	require.NoError(t, s.Approve(reviewer, "grounded and correct"))
	assert.Equal(t, SuggestionApproved, s.ReviewStatus)
	assert.Equal(t, &reviewer, s.ReviewedBy)

	// decisions are final
	err := s.Reject(reviewer, "changed my mind")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState))

	s2 := pendingSuggestion(t)
	require.NoError(t, s2.Reject(reviewer, "citation does not support the claim"))
	assert.Equal(t, SuggestionRejected, s2.ReviewStatus)

	s3 := pendingSuggestion(t)
	require.NoError(t, s3.Supersede())
	assert.Equal(t, SuggestionSuperseded, s3.ReviewStatus)
}
