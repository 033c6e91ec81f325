package guidance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

// Service governs the guidance content lifecycle for unified requirements:
// an append-only, reviewable version history, optionally enriched by AI
// suggestions that are provably grounded in the knowledge corpus.
type Service interface {
	// CreateDraftVersion allocates the next version number for the unified
	// requirement and persists a draft built from the given blocks. The
	// row cap is enforced here, at write time.
	CreateDraftVersion(ctx context.Context, unifiedRequirementID uuid.UUID, blocks []guidance.Block, actorID uuid.UUID) (*guidance.Version, error)

	// UpdateDraftBlocks replaces a draft's content, guarded by the
	// caller's base content hash.
	UpdateDraftBlocks(ctx context.Context, versionID uuid.UUID, blocks []guidance.Block, baseHash string, actorID uuid.UUID) (*guidance.Version, error)

	// SubmitForReview moves draft -> in_review after the quality gates pass
	SubmitForReview(ctx context.Context, versionID, actorID uuid.UUID) error

	// MarkReviewed records a completed review on an in_review version
	MarkReviewed(ctx context.Context, versionID, reviewerID uuid.UUID, notes string) error

	// Approve moves in_review -> approved; skipping review is a SequenceError
	Approve(ctx context.Context, versionID, actorID uuid.UUID) error

	// Reject returns an in_review version to draft
	Reject(ctx context.Context, versionID, actorID uuid.UUID, rationale string) error

	// Publish makes the version live immediately, archiving any prior
	// published version of the same requirement, or records a future
	// scheduledAt for the scheduler to promote.
	Publish(ctx context.Context, versionID, actorID uuid.UUID, scheduledAt *time.Time) error

	// PromoteScheduled publishes every approved version whose scheduled
	// time has passed. Invoked by an external cron trigger.
	PromoteScheduled(ctx context.Context, now time.Time) (int, error)

	// Archive retires a version
	Archive(ctx context.Context, versionID, actorID uuid.UUID, rationale string) error

	// ProposeAISuggestion runs the generation call (time-bounded, before
	// any transaction opens) and persists the resulting suggestion with
	// its citations all-or-nothing.
	ProposeAISuggestion(ctx context.Context, req ProposalRequest) (*guidance.Suggestion, error)

	// ReviewSuggestion decides a pending suggestion. Approval does not
	// touch the target version; folding happens in ApplySuggestion.
	ReviewSuggestion(ctx context.Context, suggestionID uuid.UUID, decision guidance.ReviewStatus, reviewerID uuid.UUID, notes string) error

	// ApplySuggestion folds an approved suggestion into a new draft
	// version of the target requirement, preserving immutability of the
	// suggested-against version.
	ApplySuggestion(ctx context.Context, suggestionID, actorID uuid.UUID) (*guidance.Version, error)

	// GetLatestPublished returns the single currently published version
	GetLatestPublished(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, error)
}

// ProposalRequest carries the inputs of ProposeAISuggestion
type ProposalRequest struct {
	VersionID           uuid.UUID
	TargetBlockID       *uuid.UUID
	Type                guidance.SuggestionType
	Impact              guidance.ImpactLabel
	FrameworkSelections []string
	ActorID             uuid.UUID
}

// VersionRepository is the persistence port for guidance versions. Status
// changes and their audit transitions are written atomically: both succeed
// or both fail.
type VersionRepository interface {
	GetVersion(ctx context.Context, id uuid.UUID) (*guidance.Version, error)
	// NextVersionNumber allocates max(existing)+1 for the requirement
	// under a lock so concurrent drafts cannot collide. Numbers are never
	// reused, even after archival.
	NextVersionNumber(ctx context.Context, unifiedRequirementID uuid.UUID) (int, error)
	CreateVersion(ctx context.Context, v *guidance.Version) error
	UpdateDraftContent(ctx context.Context, v *guidance.Version) error
	// SaveWithTransition updates the version row and appends the
	// transition in one transaction.
	SaveWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error
	// PublishWithTransition publishes v and archives any prior published
	// version of the same requirement in one serialized transaction
	// (advisory lock on the requirement id).
	PublishWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error
	GetLatestPublished(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, error)
	ListScheduledBefore(ctx context.Context, cutoff time.Time) ([]*guidance.Version, error)
}

// SuggestionRepository persists AI suggestions and their citations
type SuggestionRepository interface {
	// CreateSuggestion writes the suggestion and all citations
	// all-or-nothing
	CreateSuggestion(ctx context.Context, s *guidance.Suggestion) error
	GetSuggestion(ctx context.Context, id uuid.UUID) (*guidance.Suggestion, error)
	UpdateSuggestion(ctx context.Context, s *guidance.Suggestion) error
}

// KnowledgeRepository resolves knowledge-corpus chunk references
type KnowledgeRepository interface {
	// MissingChunks returns the subset of ids that do not resolve
	MissingChunks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// GenerationRequest is the input to the external AI subsystem
type GenerationRequest struct {
	UnifiedRequirementID uuid.UUID
	FrameworkSelections  []string
	PriorContent         string
	SuggestionType       guidance.SuggestionType
}

// GenerationResult is what the AI subsystem returns. The call is treated as
// a pure function; persistence happens afterwards, never inside it.
type GenerationResult struct {
	SuggestedContent string
	Rationale        string
	Confidence       float64
	ModelID          string
	Citations        []GeneratedCitation
}

// GeneratedCitation is one provenance reference from the generation call
type GeneratedCitation struct {
	SourceChunkID  uuid.UUID
	RelevanceScore float64
	ContextText    string
}

// AIClient calls the external generation subsystem
type AIClient interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// PublishedCache is the cache-aside port for published guidance reads
type PublishedCache interface {
	Get(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, bool)
	Set(ctx context.Context, v *guidance.Version)
	Invalidate(ctx context.Context, unifiedRequirementID uuid.UUID)
}
