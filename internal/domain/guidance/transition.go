package guidance

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Transition is one append-only audit record of a status/stage change on a
// guidance version. Transition rows are written in the same transaction as
// the version's own state change and are never mutated or deleted.
type Transition struct {
	ID                  uuid.UUID `json:"id"`
	VersionID           uuid.UUID `json:"version_id"`
	ActorID             uuid.UUID `json:"actor_id"`
	ActorRole           string    `json:"actor_role"`
	FromStatus          Status    `json:"from_status"`
	ToStatus            Status    `json:"to_status"`
	FromStage           Stage     `json:"from_stage"`
	ToStage             Stage     `json:"to_stage"`
	Rationale           string    `json:"rationale"`
	BlocksAffected      int       `json:"blocks_affected"`
	SuggestionsAffected int       `json:"suggestions_affected"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// NewTransition creates an audit record for a state change
func NewTransition(versionID, actorID uuid.UUID, actorRole string, fromStatus, toStatus Status, fromStage, toStage Stage, rationale string) (*Transition, error) {
	if versionID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_VERSION", "version ID is required")
	}
	if actorID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_ACTOR", "actor ID is required")
	}
	return &Transition{
		ID:         uuid.New(),
		VersionID:  versionID,
		ActorID:    actorID,
		ActorRole:  actorRole,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		FromStage:  fromStage,
		ToStage:    toStage,
		Rationale:  rationale,
		OccurredAt: time.Now(),
	}, nil
}
