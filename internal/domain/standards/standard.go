package standards

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Standard is one framework or regulation version in the library,
// e.g. "ISO 27001:2022" or "CIS Controls IG2".
type Standard struct {
	ID          uuid.UUID    `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Type        StandardType `json:"type"`
	Description string       `json:"description"`
	IsActive    bool         `json:"is_active"`
	SortOrder   int          `json:"sort_order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// StandardVersion is one row of a standard's published-revision history.
type StandardVersion struct {
	ID          uuid.UUID `json:"id"`
	StandardID  uuid.UUID `json:"standard_id"`
	Version     string    `json:"version"`
	PublishedAt time.Time `json:"published_at"`
	ChangeNotes string    `json:"change_notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// StandardType classifies a standard
type StandardType string

const (
	TypeFramework  StandardType = "framework"
	TypeRegulation StandardType = "regulation"
	TypePolicy     StandardType = "policy"
	TypeGuideline  StandardType = "guideline"
)

func (t StandardType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known standard type
func (t StandardType) IsValid() bool {
	switch t {
	case TypeFramework, TypeRegulation, TypePolicy, TypeGuideline:
		return true
	}
	return false
}

// NewStandard creates a standard with validation
func NewStandard(slug, name, version string, standardType StandardType) (*Standard, error) {
	if slug == "" {
		return nil, errors.NewValidationError("INVALID_SLUG", "standard slug is required")
	}
	if name == "" {
		return nil, errors.NewValidationError("INVALID_NAME", "standard name is required")
	}
	if !standardType.IsValid() {
		return nil, errors.NewValidationError("INVALID_TYPE", "unknown standard type: "+string(standardType))
	}

	now := time.Now()
	return &Standard{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		Version:   version,
		Type:      standardType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate soft-retires the standard. Standards are never hard-deleted
// while requirements reference them.
func (s *Standard) Deactivate() error {
	if !s.IsActive {
		return errors.NewConflictError("standard is already inactive")
	}
	s.IsActive = false
	s.UpdatedAt = time.Now()
	return nil
}

// Reactivate restores a previously deactivated standard
func (s *Standard) Reactivate() error {
	if s.IsActive {
		return errors.NewConflictError("standard is already active")
	}
	s.IsActive = true
	s.UpdatedAt = time.Now()
	return nil
}

// DisplayName is the name shown in listings, e.g. "ISO 27001 (2022)"
func (s *Standard) DisplayName() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + " " + s.Version
}
