package guidance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/guidance"
	"github.com/auditready/auditready-backend/internal/metrics"
)

// Config carries the tunable limits of the guidance pipeline
type Config struct {
	// RowCap bounds content rows per version, within [8, 10]
	RowCap int
	// MinWords and MaxWords gate submission for review
	MinWords int
	MaxWords int
	// AITimeout bounds a single generation call
	AITimeout time.Duration
	// AIRequestsPerMinute throttles the generation subsystem
	AIRequestsPerMinute int
}

// DefaultConfig returns the production limits
func DefaultConfig() Config {
	return Config{
		RowCap:              guidance.DefaultRowCap,
		MinWords:            40,
		MaxWords:            1200,
		AITimeout:           30 * time.Second,
		AIRequestsPerMinute: 20,
	}
}

func (c Config) normalized() Config {
	if c.RowCap < 8 || c.RowCap > guidance.DefaultRowCap {
		c.RowCap = guidance.DefaultRowCap
	}
	if c.MinWords <= 0 {
		c.MinWords = DefaultConfig().MinWords
	}
	if c.MaxWords <= c.MinWords {
		c.MaxWords = DefaultConfig().MaxWords
	}
	if c.AITimeout <= 0 {
		c.AITimeout = DefaultConfig().AITimeout
	}
	if c.AIRequestsPerMinute <= 0 {
		c.AIRequestsPerMinute = DefaultConfig().AIRequestsPerMinute
	}
	return c
}

type service struct {
	logger      *zap.Logger
	versions    VersionRepository
	suggestions SuggestionRepository
	knowledge   KnowledgeRepository
	ai          *boundedAIClient
	cache       PublishedCache
	cfg         Config
}

var _ Service = (*service)(nil)

// NewService wires the guidance pipeline. cache may be nil when published
// reads go straight to the repository.
func NewService(logger *zap.Logger, versions VersionRepository, suggestions SuggestionRepository, knowledge KnowledgeRepository, ai AIClient, cache PublishedCache, cfg Config) Service {
	cfg = cfg.normalized()
	return &service{
		logger:      logger,
		versions:    versions,
		suggestions: suggestions,
		knowledge:   knowledge,
		ai:          newBoundedAIClient(ai, cfg.AITimeout, cfg.AIRequestsPerMinute),
		cache:       cache,
		cfg:         cfg,
	}
}

func (s *service) CreateDraftVersion(ctx context.Context, unifiedRequirementID uuid.UUID, blocks []guidance.Block, actorID uuid.UUID) (*guidance.Version, error) {
	number, err := s.versions.NextVersionNumber(ctx, unifiedRequirementID)
	if err != nil {
		return nil, errors.NewInternalError("failed to allocate version number").WithCause(err)
	}

	version, err := guidance.NewDraftVersion(unifiedRequirementID, number, blocks, s.cfg.RowCap, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.versions.CreateVersion(ctx, version); err != nil {
		return nil, errors.NewInternalError("failed to persist draft version").WithCause(err)
	}

	s.logger.Info("draft version created",
		zap.String("unified_requirement_id", unifiedRequirementID.String()),
		zap.Int("version_number", number),
		zap.Int("rows", version.RowCount),
	)
	return version, nil
}

func (s *service) UpdateDraftBlocks(ctx context.Context, versionID uuid.UUID, blocks []guidance.Block, baseHash string, actorID uuid.UUID) (*guidance.Version, error) {
	if actorID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_ACTOR", "editing actor is required")
	}
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if err := version.ReplaceBlocks(blocks, baseHash, s.cfg.RowCap); err != nil {
		return nil, err
	}
	if err := s.versions.UpdateDraftContent(ctx, version); err != nil {
		return nil, errors.NewInternalError("failed to persist draft content").WithCause(err)
	}
	return version, nil
}

// SubmitForReview runs the quality gates before the status change: content
// must exist, word count must sit within the configured bounds, and every
// machine-authored block must carry citations.
func (s *service) SubmitForReview(ctx context.Context, versionID, actorID uuid.UUID) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	if err := s.checkQualityGates(version); err != nil {
		return err
	}

	fromStatus, fromStage := version.Status, version.Stage
	if err := version.SubmitForReview(actorID); err != nil {
		return err
	}
	return s.saveTransition(ctx, version, actorID, "editor", fromStatus, fromStage, "submitted for review")
}

func (s *service) checkQualityGates(v *guidance.Version) error {
	if len(v.Blocks) == 0 {
		return errors.NewValidationError("EMPTY_VERSION", "a version needs at least one content block")
	}
	if v.WordCount < s.cfg.MinWords {
		return errors.NewContentConstraintError("content below minimum word count", s.cfg.MinWords, v.WordCount)
	}
	if v.WordCount > s.cfg.MaxWords {
		return errors.NewContentConstraintError("content above maximum word count", s.cfg.MaxWords, v.WordCount)
	}
	for i := range v.Blocks {
		if err := v.Blocks[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) MarkReviewed(ctx context.Context, versionID, reviewerID uuid.UUID, notes string) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	fromStatus, fromStage := version.Status, version.Stage
	if err := version.MarkReviewed(reviewerID); err != nil {
		return err
	}
	return s.saveTransition(ctx, version, reviewerID, "reviewer", fromStatus, fromStage, notes)
}

func (s *service) Approve(ctx context.Context, versionID, actorID uuid.UUID) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	fromStatus, fromStage := version.Status, version.Stage
	if err := version.Approve(actorID); err != nil {
		return err
	}
	if err := version.CheckTrailOrdering(); err != nil {
		return err
	}
	return s.saveTransition(ctx, version, actorID, "approver", fromStatus, fromStage, "approved")
}

func (s *service) Reject(ctx context.Context, versionID, actorID uuid.UUID, rationale string) error {
	if rationale == "" {
		return errors.NewValidationError("MISSING_RATIONALE", "a rejection needs a rationale")
	}
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	fromStatus, fromStage := version.Status, version.Stage
	if err := version.RejectToDraft(); err != nil {
		return err
	}
	return s.saveTransition(ctx, version, actorID, "reviewer", fromStatus, fromStage, rationale)
}

func (s *service) Publish(ctx context.Context, versionID, actorID uuid.UUID, scheduledAt *time.Time) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}

	if scheduledAt != nil {
		if err := version.SchedulePublish(*scheduledAt); err != nil {
			return err
		}
		if err := s.versions.UpdateDraftContent(ctx, version); err != nil {
			return errors.NewInternalError("failed to record publish schedule").WithCause(err)
		}
		s.logger.Info("publish scheduled",
			zap.String("version_id", version.ID.String()),
			zap.Time("scheduled_at", *scheduledAt),
		)
		return nil
	}

	return s.publishNow(ctx, version, actorID)
}

func (s *service) publishNow(ctx context.Context, version *guidance.Version, actorID uuid.UUID) error {
	fromStatus, fromStage := version.Status, version.Stage
	if err := version.Publish(actorID); err != nil {
		return err
	}
	if err := version.CheckTrailOrdering(); err != nil {
		return err
	}

	tr, err := guidance.NewTransition(version.ID, actorID, "publisher",
		fromStatus, version.Status, fromStage, version.Stage, "published")
	if err != nil {
		return err
	}
	// the repository serializes per requirement and archives the prior
	// published version in the same transaction
	if err := s.versions.PublishWithTransition(ctx, version, tr); err != nil {
		return errors.NewInternalError("failed to publish version").WithCause(err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, version.UnifiedRequirementID)
	}
	metrics.VersionsPublished.Inc()
	s.logger.Info("version published",
		zap.String("unified_requirement_id", version.UnifiedRequirementID.String()),
		zap.Int("version_number", version.VersionNumber),
	)
	return nil
}

func (s *service) PromoteScheduled(ctx context.Context, now time.Time) (int, error) {
	due, err := s.versions.ListScheduledBefore(ctx, now)
	if err != nil {
		return 0, errors.NewInternalError("failed to list scheduled versions").WithCause(err)
	}

	promoted := 0
	for _, version := range due {
		// the scheduler publishes on behalf of whoever approved
		if version.ApprovedBy == nil {
			s.logger.Warn("scheduled version lacks approval trail, skipping",
				zap.String("version_id", version.ID.String()))
			continue
		}
		if err := s.publishNow(ctx, version, *version.ApprovedBy); err != nil {
			s.logger.Error("scheduled publish failed",
				zap.String("version_id", version.ID.String()),
				zap.Error(err),
			)
			continue
		}
		promoted++
	}
	return promoted, nil
}

func (s *service) Archive(ctx context.Context, versionID, actorID uuid.UUID, rationale string) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	fromStatus, fromStage := version.Status, version.Stage
	wasPublished := version.Status == guidance.StatusPublished
	if err := version.Archive(); err != nil {
		return err
	}
	if err := s.saveTransition(ctx, version, actorID, "editor", fromStatus, fromStage, rationale); err != nil {
		return err
	}
	if wasPublished && s.cache != nil {
		s.cache.Invalidate(ctx, version.UnifiedRequirementID)
	}
	return nil
}

// ProposeAISuggestion runs the generation call first, outside any
// transaction, so a slow or failed model call never holds database locks.
// Only a grounded result is persisted, suggestion and citations together.
func (s *service) ProposeAISuggestion(ctx context.Context, req ProposalRequest) (*guidance.Suggestion, error) {
	if !req.Type.IsValid() {
		return nil, errors.NewValidationError("INVALID_SUGGESTION_TYPE", "unknown suggestion type: "+string(req.Type))
	}
	if !req.Impact.IsValid() {
		return nil, errors.NewValidationError("INVALID_IMPACT", "unknown impact label: "+string(req.Impact))
	}

	version, err := s.versions.GetVersion(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}

	var original string
	if req.TargetBlockID != nil {
		block := findBlock(version, *req.TargetBlockID)
		if block == nil {
			return nil, errors.NewNotFoundError("target block")
		}
		original = block.Content
	} else if req.Type != guidance.SuggestionAddition {
		return nil, errors.NewValidationError("MISSING_TARGET_BLOCK", "only additions may omit a target block")
	}

	result, err := s.ai.Generate(ctx, GenerationRequest{
		UnifiedRequirementID: version.UnifiedRequirementID,
		FrameworkSelections:  req.FrameworkSelections,
		PriorContent:         original,
		SuggestionType:       req.Type,
	})
	if err != nil {
		metrics.SuggestionsProposed.WithLabelValues("generation_failed").Inc()
		return nil, err
	}

	if len(result.Citations) == 0 {
		metrics.SuggestionsProposed.WithLabelValues("uncited").Inc()
		return nil, errors.NewCitationRequiredError("generation returned no knowledge-corpus citations")
	}
	chunkIDs := make([]uuid.UUID, len(result.Citations))
	for i, c := range result.Citations {
		chunkIDs[i] = c.SourceChunkID
	}
	missing, err := s.knowledge.MissingChunks(ctx, chunkIDs)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve knowledge chunks").WithCause(err)
	}
	if len(missing) > 0 {
		metrics.SuggestionsProposed.WithLabelValues("unresolvable_citation").Inc()
		return nil, errors.NewCitationRequiredError(
			fmt.Sprintf("%d cited knowledge chunks do not resolve", len(missing)))
	}

	suggestion, err := guidance.NewSuggestion(version.ID, req.TargetBlockID, req.Type, req.Impact,
		result.SuggestedContent, result.Rationale, result.Confidence, chunkIDs)
	if err != nil {
		return nil, err
	}
	suggestion.OriginalContent = original
	suggestion.ModelID = result.ModelID

	citations := make([]guidance.Citation, 0, len(result.Citations))
	for _, c := range result.Citations {
		citation, err := guidance.NewSuggestionCitation(suggestion.ID, c.SourceChunkID, c.RelevanceScore, c.ContextText)
		if err != nil {
			return nil, err
		}
		citations = append(citations, *citation)
	}
	if err := suggestion.AttachCitations(citations); err != nil {
		return nil, err
	}

	if err := s.suggestions.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, errors.NewInternalError("failed to persist suggestion").WithCause(err)
	}

	metrics.SuggestionsProposed.WithLabelValues("pending").Inc()
	s.logger.Info("AI suggestion proposed",
		zap.String("version_id", version.ID.String()),
		zap.String("suggestion_id", suggestion.ID.String()),
		zap.String("type", string(req.Type)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("citations", len(citations)),
	)
	return suggestion, nil
}

func (s *service) ReviewSuggestion(ctx context.Context, suggestionID uuid.UUID, decision guidance.ReviewStatus, reviewerID uuid.UUID, notes string) error {
	suggestion, err := s.suggestions.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return err
	}

	switch decision {
	case guidance.SuggestionApproved:
		err = suggestion.Approve(reviewerID, notes)
	case guidance.SuggestionRejected:
		err = suggestion.Reject(reviewerID, notes)
	case guidance.SuggestionSuperseded:
		err = suggestion.Supersede()
	default:
		return errors.NewValidationError("INVALID_DECISION", "unknown review decision: "+string(decision))
	}
	if err != nil {
		return err
	}
	if err := s.suggestions.UpdateSuggestion(ctx, suggestion); err != nil {
		return errors.NewInternalError("failed to persist suggestion review").WithCause(err)
	}
	return nil
}

// ApplySuggestion folds an approved suggestion into a fresh draft of the
// target requirement. The suggested-against version is never mutated.
func (s *service) ApplySuggestion(ctx context.Context, suggestionID, actorID uuid.UUID) (*guidance.Version, error) {
	suggestion, err := s.suggestions.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.ReviewStatus != guidance.SuggestionApproved {
		return nil, errors.NewInvalidStateError(string(suggestion.ReviewStatus), "apply")
	}

	version, err := s.versions.GetVersion(ctx, suggestion.VersionID)
	if err != nil {
		return nil, err
	}

	blocks, err := foldSuggestion(version, suggestion)
	if err != nil {
		return nil, err
	}

	draft, err := s.CreateDraftVersion(ctx, version.UnifiedRequirementID, blocks, actorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("suggestion folded into new draft",
		zap.String("suggestion_id", suggestion.ID.String()),
		zap.String("source_version_id", version.ID.String()),
		zap.String("draft_version_id", draft.ID.String()),
	)
	return draft, nil
}

// foldSuggestion produces the block set for the successor draft. The new
// or changed block carries the suggestion's AI provenance and citations,
// rebound to the block.
func foldSuggestion(version *guidance.Version, suggestion *guidance.Suggestion) ([]guidance.Block, error) {
	blocks := make([]guidance.Block, len(version.Blocks))
	copy(blocks, version.Blocks)

	newBlock := func(order int, kind guidance.BlockKind, conditions []string) (guidance.Block, error) {
		b := guidance.Block{
			ID:                  uuid.New(),
			Order:               order,
			Kind:                kind,
			Content:             suggestion.SuggestedContent,
			FrameworkConditions: conditions,
			AI: &guidance.AIMetadata{
				ModelID:    suggestion.ModelID,
				Confidence: suggestion.Confidence,
				Rationale:  suggestion.Rationale,
			},
		}
		citations := make([]guidance.Citation, 0, len(suggestion.Citations))
		for _, c := range suggestion.Citations {
			rebound, err := guidance.NewBlockCitation(b.ID, c.SourceChunkID, c.RelevanceScore, c.ContextText)
			if err != nil {
				return guidance.Block{}, err
			}
			citations = append(citations, *rebound)
		}
		b.Citations = citations
		return b, nil
	}

	if suggestion.Type == guidance.SuggestionAddition {
		maxOrder := 0
		for i := range blocks {
			if blocks[i].Order > maxOrder {
				maxOrder = blocks[i].Order
			}
		}
		added, err := newBlock(maxOrder+1, guidance.BlockBaseline, nil)
		if err != nil {
			return nil, err
		}
		return append(blocks, added), nil
	}

	for i := range blocks {
		if suggestion.TargetBlockID != nil && blocks[i].ID == *suggestion.TargetBlockID {
			replaced, err := newBlock(blocks[i].Order, blocks[i].Kind, blocks[i].FrameworkConditions)
			if err != nil {
				return nil, err
			}
			blocks[i] = replaced
			return blocks, nil
		}
	}
	return nil, errors.NewNotFoundError("target block")
}

func (s *service) GetLatestPublished(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, unifiedRequirementID); ok {
			return cached, nil
		}
	}
	version, err := s.versions.GetLatestPublished(ctx, unifiedRequirementID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, version)
	}
	return version, nil
}

func (s *service) saveTransition(ctx context.Context, version *guidance.Version, actorID uuid.UUID, role string, fromStatus guidance.Status, fromStage guidance.Stage, rationale string) error {
	tr, err := guidance.NewTransition(version.ID, actorID, role,
		fromStatus, version.Status, fromStage, version.Stage, rationale)
	if err != nil {
		return err
	}
	tr.BlocksAffected = len(version.Blocks)
	if err := s.versions.SaveWithTransition(ctx, version, tr); err != nil {
		return errors.NewInternalError("failed to persist state change").WithCause(err)
	}
	return nil
}

func findBlock(v *guidance.Version, blockID uuid.UUID) *guidance.Block {
	for i := range v.Blocks {
		if v.Blocks[i].ID == blockID {
			return &v.Blocks[i]
		}
	}
	return nil
}
