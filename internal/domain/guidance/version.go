package guidance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Status is the coarse workflow state of a guidance version
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}

// Stage tracks the same lifecycle at finer grain
type Stage string

const (
	StageEditing    Stage = "editing"
	StageReview     Stage = "review"
	StageApproval   Stage = "approval"
	StagePublishing Stage = "publishing"
)

func (s Stage) String() string {
	return string(s)
}

// DefaultRowCap is the content-density cap: published guidance must fit a
// fixed-size card in the product, so a version may not exceed this many
// rendered rows. Configurable down to 8 via config.
const DefaultRowCap = 10

// Version is an immutable, numbered snapshot of guidance content for one
// unified requirement. Once a version leaves draft it is never edited in
// place; corrections require allocating version N+1. Version numbers are
// monotonic per requirement and never reused, even after archival.
type Version struct {
	ID                   uuid.UUID `json:"id"`
	UnifiedRequirementID uuid.UUID `json:"unified_requirement_id"`
	VersionNumber        int       `json:"version_number"`
	Blocks               []Block   `json:"content_blocks"`
	Status               Status    `json:"status"`
	Stage                Stage     `json:"stage"`

	ContentHash      string  `json:"content_hash"`
	WordCount        int     `json:"word_count"`
	RowCount         int     `json:"row_count"`
	LintScore        float64 `json:"lint_score"`
	ReadabilityScore float64 `json:"readability_score"`

	CreatedBy          uuid.UUID  `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	ReviewedBy         *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	ApprovedBy         *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	PublishedBy        *uuid.UUID `json:"published_by,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at,omitempty"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
}

// NewDraftVersion creates version number versionNumber for a unified
// requirement in draft/editing state, computing content hash, word count and
// row count from the blocks. The row cap is enforced at write time, not
// linted afterward.
func NewDraftVersion(unifiedRequirementID uuid.UUID, versionNumber int, blocks []Block, rowCap int, createdBy uuid.UUID) (*Version, error) {
	if unifiedRequirementID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_UNIFIED_REQUIREMENT", "unified requirement ID is required")
	}
	if versionNumber < 1 {
		return nil, errors.NewValidationError("INVALID_VERSION_NUMBER", "version number must be positive")
	}
	if createdBy == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_ACTOR", "creating actor is required")
	}
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	if len(blocks) > rowCap {
		return nil, errors.NewContentConstraintError("content rows exceed card capacity", rowCap, len(blocks))
	}

	seen := make(map[int]bool, len(blocks))
	words := 0
	for i := range blocks {
		if err := blocks[i].Validate(); err != nil {
			return nil, err
		}
		if seen[blocks[i].Order] {
			return nil, errors.NewValidationError("DUPLICATE_BLOCK_ORDER",
				fmt.Sprintf("block order %d used more than once", blocks[i].Order))
		}
		seen[blocks[i].Order] = true
		words += blocks[i].wordCount()
	}

	return &Version{
		ID:                   uuid.New(),
		UnifiedRequirementID: unifiedRequirementID,
		VersionNumber:        versionNumber,
		Blocks:               blocks,
		Status:               StatusDraft,
		Stage:                StageEditing,
		ContentHash:          HashBlocks(blocks),
		WordCount:            words,
		RowCount:             len(blocks),
		CreatedBy:            createdBy,
		CreatedAt:            time.Now(),
	}, nil
}

// HashBlocks computes the content hash over block order, kind and content.
// Framework conditions participate too since they change what renders.
func HashBlocks(blocks []Block) string {
	h := sha256.New()
	for i := range blocks {
		fmt.Fprintf(h, "%d\x1f%s\x1f%s\x1f", blocks[i].Order, blocks[i].Kind, blocks[i].Content)
		for _, f := range blocks[i].FrameworkConditions {
			fmt.Fprintf(h, "%s\x1e", f)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ReplaceBlocks swaps the draft's content, verifying the caller's base hash
// against current state. A stale base hash means another editor got there
// first; the caller must re-fetch. Only drafts are editable.
func (v *Version) ReplaceBlocks(blocks []Block, baseHash string, rowCap int) error {
	if v.Status != StatusDraft {
		return errors.NewInvalidStateError(string(v.Status), "edit")
	}
	if baseHash != v.ContentHash {
		return errors.NewConcurrentModificationError("base content hash does not match current draft state")
	}
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	if len(blocks) > rowCap {
		return errors.NewContentConstraintError("content rows exceed card capacity", rowCap, len(blocks))
	}

	seen := make(map[int]bool, len(blocks))
	words := 0
	for i := range blocks {
		if err := blocks[i].Validate(); err != nil {
			return err
		}
		if seen[blocks[i].Order] {
			return errors.NewValidationError("DUPLICATE_BLOCK_ORDER",
				fmt.Sprintf("block order %d used more than once", blocks[i].Order))
		}
		seen[blocks[i].Order] = true
		words += blocks[i].wordCount()
	}

	v.Blocks = blocks
	v.ContentHash = HashBlocks(blocks)
	v.WordCount = words
	v.RowCount = len(blocks)
	return nil
}

// SubmitForReview moves draft -> in_review. The reviewer identity is not
// recorded here; that happens when a reviewer completes MarkReviewed.
func (v *Version) SubmitForReview(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return errors.NewValidationError("INVALID_ACTOR", "submitting actor is required")
	}
	if v.Status != StatusDraft {
		return errors.NewInvalidStateError(string(v.Status), string(StatusInReview))
	}
	v.Status = StatusInReview
	v.Stage = StageReview
	return nil
}

// MarkReviewed records that a reviewer completed the review. Approval is
// gated on this having happened.
func (v *Version) MarkReviewed(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return errors.NewValidationError("INVALID_ACTOR", "reviewing actor is required")
	}
	if v.Status != StatusInReview || v.Stage != StageReview {
		return errors.NewInvalidStateError(string(v.Status), "review")
	}
	now := time.Now()
	v.ReviewedBy = &reviewerID
	v.ReviewedAt = &now
	return nil
}

// RejectToDraft returns an in_review version to draft for further editing.
// The review trail is cleared so a later approve cannot ride on a review
// that rejected the content.
func (v *Version) RejectToDraft() error {
	if v.Status != StatusInReview {
		return errors.NewInvalidStateError(string(v.Status), string(StatusDraft))
	}
	v.Status = StatusDraft
	v.Stage = StageEditing
	v.ReviewedBy = nil
	v.ReviewedAt = nil
	return nil
}

// Approve moves in_review -> approved. The review step must have actually
// happened: skipping it is a SequenceError, surfaced here at the
// application layer rather than as an opaque database check failure.
func (v *Version) Approve(actorID uuid.UUID) error {
	if v.Status != StatusInReview {
		return errors.NewInvalidStateError(string(v.Status), string(StatusApproved))
	}
	if v.Stage != StageReview {
		return errors.NewSequenceError("approve", "review stage")
	}
	if v.ReviewedBy == nil || v.ReviewedAt == nil {
		return errors.NewSequenceError("approve", "review")
	}
	now := time.Now()
	v.Status = StatusApproved
	v.Stage = StageApproval
	v.ApprovedBy = &actorID
	v.ApprovedAt = &now
	return nil
}

// Publish moves approved -> published. Approval must precede publication;
// the at-most-one-published-per-requirement invariant is enforced by the
// persistence layer archiving the prior published version in the same
// transaction.
func (v *Version) Publish(actorID uuid.UUID) error {
	if v.Status != StatusApproved {
		return errors.NewInvalidStateError(string(v.Status), string(StatusPublished))
	}
	if v.ApprovedBy == nil || v.ApprovedAt == nil {
		return errors.NewSequenceError("publish", "approval")
	}
	now := time.Now()
	v.Status = StatusPublished
	v.Stage = StagePublishing
	v.PublishedBy = &actorID
	v.PublishedAt = &now
	v.ScheduledPublishAt = nil
	return nil
}

// SchedulePublish records a future publication time on an approved version.
// Status stays approved until the scheduler promotes it.
func (v *Version) SchedulePublish(at time.Time) error {
	if v.Status != StatusApproved {
		return errors.NewInvalidStateError(string(v.Status), "scheduled publish")
	}
	if !at.After(time.Now()) {
		return errors.NewValidationError("INVALID_SCHEDULE", "scheduled publish time must be in the future")
	}
	v.ScheduledPublishAt = &at
	return nil
}

// Archive retires the version. Reachable from any non-archived state;
// for published versions this is the supersede path.
func (v *Version) Archive() error {
	if v.Status == StatusArchived {
		return errors.NewInvalidStateError(string(v.Status), string(StatusArchived))
	}
	now := time.Now()
	v.Status = StatusArchived
	v.ArchivedAt = &now
	v.ScheduledPublishAt = nil
	return nil
}

// IsDeletable reports whether the version may still be removed. A version
// that has left draft is part of the audit history forever.
func (v *Version) IsDeletable() bool {
	return v.Status == StatusDraft
}

// CheckTrailOrdering verifies the actor-trail invariants: approval requires
// review, publication requires approval. Mirrors the database check
// constraint so violations surface as domain errors.
func (v *Version) CheckTrailOrdering() error {
	if v.ApprovedAt != nil && v.ReviewedAt == nil {
		return errors.NewSequenceError("approval timestamp", "review timestamp")
	}
	if v.PublishedAt != nil && v.ApprovedAt == nil {
		return errors.NewSequenceError("publication timestamp", "approval timestamp")
	}
	return nil
}
