package unified

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Mapping is one many-to-many edge between a unified requirement and a
// library requirement. The (unified_requirement_id, requirement_id) pair is
// unique; a library requirement may still appear under several unified
// requirements through separate rows, which is intentional: one control can
// satisfy multiple consolidated themes.
type Mapping struct {
	ID                   uuid.UUID       `json:"id"`
	UnifiedRequirementID uuid.UUID       `json:"unified_requirement_id"`
	RequirementID        uuid.UUID       `json:"requirement_id"`
	Strength             MappingStrength `json:"mapping_strength"`
	Notes                string          `json:"notes"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// MappingStrength classifies how closely a library requirement satisfies a
// unified requirement. The three values have no documented numeric rubric
// and are treated as opaque labels.
type MappingStrength string

const (
	StrengthExact   MappingStrength = "exact"
	StrengthStrong  MappingStrength = "strong"
	StrengthPartial MappingStrength = "partial"
)

func (s MappingStrength) String() string {
	return string(s)
}

func (s MappingStrength) IsValid() bool {
	switch s {
	case StrengthExact, StrengthStrong, StrengthPartial:
		return true
	}
	return false
}

// NewMapping creates a mapping edge with validation
func NewMapping(unifiedID, requirementID uuid.UUID, strength MappingStrength, notes string) (*Mapping, error) {
	if unifiedID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_UNIFIED_REQUIREMENT", "unified requirement ID is required")
	}
	if requirementID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_REQUIREMENT", "requirement ID is required")
	}
	if !strength.IsValid() {
		return nil, errors.NewValidationError("INVALID_STRENGTH", "unknown mapping strength: "+string(strength))
	}

	now := time.Now()
	return &Mapping{
		ID:                   uuid.New(),
		UnifiedRequirementID: unifiedID,
		RequirementID:        requirementID,
		Strength:             strength,
		Notes:                notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Restrength records an explicit strength change with its audit note.
// Changing strength is never an implicit side effect of re-mapping.
func (m *Mapping) Restrength(strength MappingStrength, note string) error {
	if !strength.IsValid() {
		return errors.NewValidationError("INVALID_STRENGTH", "unknown mapping strength: "+string(strength))
	}
	if note == "" {
		return errors.NewValidationError("NOTE_REQUIRED", "a strength change requires an audit note")
	}
	m.Strength = strength
	m.Notes = note
	m.UpdatedAt = time.Now()
	return nil
}
