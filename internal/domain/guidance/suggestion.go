package guidance

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// SuggestionType classifies what an AI suggestion proposes to do
type SuggestionType string

const (
	SuggestionAddition    SuggestionType = "addition"
	SuggestionReplacement SuggestionType = "replacement"
	SuggestionEnhancement SuggestionType = "enhancement"
	SuggestionCompression SuggestionType = "compression"
)

func (t SuggestionType) IsValid() bool {
	switch t {
	case SuggestionAddition, SuggestionReplacement, SuggestionEnhancement, SuggestionCompression:
		return true
	}
	return false
}

// ImpactLabel names the quality the suggestion claims to improve
type ImpactLabel string

const (
	ImpactClarity            ImpactLabel = "clarity"
	ImpactCompleteness       ImpactLabel = "completeness"
	ImpactDuplicationReduced ImpactLabel = "duplication_reduction"
	ImpactCompliance         ImpactLabel = "compliance"
	ImpactStyle              ImpactLabel = "style"
)

func (l ImpactLabel) IsValid() bool {
	switch l {
	case ImpactClarity, ImpactCompleteness, ImpactDuplicationReduced, ImpactCompliance, ImpactStyle:
		return true
	}
	return false
}

// ReviewStatus is the lifecycle of a suggestion under human review
type ReviewStatus string

const (
	SuggestionPending    ReviewStatus = "pending"
	SuggestionApproved   ReviewStatus = "approved"
	SuggestionRejected   ReviewStatus = "rejected"
	SuggestionSuperseded ReviewStatus = "superseded"
)

// Suggestion is a proposed AI edit to a guidance version. An approved
// suggestion never mutates its target in place; it is folded into a new
// draft version by a separate apply step.
type Suggestion struct {
	ID               uuid.UUID      `json:"id"`
	VersionID        uuid.UUID      `json:"version_id"`
	TargetBlockID    *uuid.UUID     `json:"target_block_id,omitempty"`
	Type             SuggestionType `json:"type"`
	OriginalContent  string         `json:"original_content"`
	SuggestedContent string         `json:"suggested_content"`
	Rationale        string         `json:"rationale"`
	Confidence       float64        `json:"confidence"`
	Impact           ImpactLabel    `json:"impact"`
	Citations        []Citation     `json:"citations"`
	SourceChunks     []uuid.UUID    `json:"source_chunks"`
	ReviewStatus     ReviewStatus   `json:"review_status"`
	ReviewedBy       *uuid.UUID     `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes      string         `json:"review_notes"`
	ModelID          string         `json:"model_id"`
	CreatedAt        time.Time      `json:"created_at"`
}

// NewSuggestion creates a pending suggestion with validation. A suggestion
// without citations or source chunks is invalid, not merely discouraged.
func NewSuggestion(versionID uuid.UUID, targetBlockID *uuid.UUID, suggestionType SuggestionType, impact ImpactLabel, suggestedContent, rationale string, confidence float64, sourceChunks []uuid.UUID) (*Suggestion, error) {
	if versionID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_VERSION", "target version ID is required")
	}
	if !suggestionType.IsValid() {
		return nil, errors.NewValidationError("INVALID_SUGGESTION_TYPE", "unknown suggestion type: "+string(suggestionType))
	}
	if !impact.IsValid() {
		return nil, errors.NewValidationError("INVALID_IMPACT", "unknown impact label: "+string(impact))
	}
	if suggestionType != SuggestionAddition && targetBlockID == nil {
		return nil, errors.NewValidationError("MISSING_TARGET_BLOCK",
			"only additions may omit a target block")
	}
	if strings.TrimSpace(suggestedContent) == "" {
		return nil, errors.NewValidationError("EMPTY_SUGGESTION", "suggested content is required")
	}
	if confidence < 0 || confidence > 1 {
		return nil, errors.NewValidationError("INVALID_CONFIDENCE", "confidence must be within [0,1]")
	}
	if len(sourceChunks) == 0 {
		return nil, errors.NewCitationRequiredError("suggestion references no knowledge-corpus chunks")
	}

	return &Suggestion{
		ID:               uuid.New(),
		VersionID:        versionID,
		TargetBlockID:    targetBlockID,
		Type:             suggestionType,
		SuggestedContent: suggestedContent,
		Rationale:        rationale,
		Confidence:       confidence,
		Impact:           impact,
		SourceChunks:     sourceChunks,
		ReviewStatus:     SuggestionPending,
		CreatedAt:        time.Now(),
	}, nil
}

// AttachCitations binds the suggestion's citations. Called after the
// suggestion ID exists so parent references line up.
func (s *Suggestion) AttachCitations(citations []Citation) error {
	if len(citations) == 0 {
		return errors.NewCitationRequiredError("suggestion carries no citations")
	}
	for i := range citations {
		if citations[i].SuggestionID == nil || *citations[i].SuggestionID != s.ID {
			return errors.NewValidationError("CITATION_PARENT_MISMATCH",
				"citation does not reference this suggestion")
		}
		if err := citations[i].Validate(); err != nil {
			return err
		}
	}
	s.Citations = citations
	return nil
}

// Validate re-checks the citation invariant on a fully assembled suggestion
func (s *Suggestion) Validate() error {
	if len(s.Citations) == 0 {
		return errors.NewCitationRequiredError("suggestion carries no citations")
	}
	if len(s.SourceChunks) == 0 {
		return errors.NewCitationRequiredError("suggestion references no knowledge-corpus chunks")
	}
	return nil
}

// Approve marks a pending suggestion as accepted by a reviewer
func (s *Suggestion) Approve(reviewerID uuid.UUID, notes string) error {
	return s.review(SuggestionApproved, reviewerID, notes)
}

// Reject marks a pending suggestion as declined by a reviewer
func (s *Suggestion) Reject(reviewerID uuid.UUID, notes string) error {
	return s.review(SuggestionRejected, reviewerID, notes)
}

// Supersede retires a pending suggestion made obsolete by a newer one
func (s *Suggestion) Supersede() error {
	if s.ReviewStatus != SuggestionPending {
		return errors.NewInvalidStateError(string(s.ReviewStatus), string(SuggestionSuperseded))
	}
	s.ReviewStatus = SuggestionSuperseded
	return nil
}

func (s *Suggestion) review(decision ReviewStatus, reviewerID uuid.UUID, notes string) error {
	if reviewerID == uuid.Nil {
		return errors.NewValidationError("INVALID_ACTOR", "reviewing actor is required")
	}
	if s.ReviewStatus != SuggestionPending {
		return errors.NewInvalidStateError(string(s.ReviewStatus), string(decision))
	}
	now := time.Now()
	s.ReviewStatus = decision
	s.ReviewedBy = &reviewerID
	s.ReviewedAt = &now
	s.ReviewNotes = notes
	return nil
}
