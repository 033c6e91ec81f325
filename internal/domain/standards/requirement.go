package standards

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Requirement is one control within a standard, e.g. ISO 27001 "A.5.34" or
// CIS safeguard "6.1.2". Codes are unique per standard, never globally:
// cross-framework code collisions ("5.1" exists in both ISO and CIS) mean
// lookups must always scope by (standard_id, requirement_code).
type Requirement struct {
	ID                     uuid.UUID  `json:"id"`
	StandardID             uuid.UUID  `json:"standard_id"`
	Code                   string     `json:"requirement_code"`
	Section                string     `json:"section"`
	Title                  string     `json:"title"`
	OfficialDescription    string     `json:"official_description"`
	ImplementationGuidance string     `json:"implementation_guidance"`
	CustomGuidance         string     `json:"custom_guidance"`
	ApplicableGroups       []string   `json:"applicable_groups"`
	Priority               Priority   `json:"priority"`
	Tags                   []string   `json:"tags"`
	// Category is a cached display projection of the unified category the
	// requirement belongs to. CategoryID is the source of truth; Category
	// must only ever be written alongside it (see SetCategory).
	Category   string     `json:"category"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Priority ranks a requirement's implementation urgency
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// CIS Implementation Groups, the tiered applicability levels used in
// ApplicableGroups for CIS Controls requirements.
const (
	GroupIG1 = "IG1"
	GroupIG2 = "IG2"
	GroupIG3 = "IG3"
)

// NewRequirement creates a library requirement with validation
func NewRequirement(standardID uuid.UUID, code, title, officialDescription string, priority Priority) (*Requirement, error) {
	if standardID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_STANDARD", "standard ID is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.NewValidationError("INVALID_CODE", "requirement code is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.NewValidationError("INVALID_TITLE", "requirement title is required")
	}
	if !priority.IsValid() {
		return nil, errors.NewValidationError("INVALID_PRIORITY", "unknown priority: "+string(priority))
	}

	now := time.Now()
	return &Requirement{
		ID:                  uuid.New(),
		StandardID:          standardID,
		Code:                strings.TrimSpace(code),
		Title:               title,
		OfficialDescription: officialDescription,
		Priority:            priority,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// SetCategory assigns the requirement's unified category. The FK and the
// cached text projection are always written together; there is no path that
// updates one without the other.
func (r *Requirement) SetCategory(categoryID uuid.UUID, categoryName string) error {
	if categoryID == uuid.Nil {
		return errors.NewValidationError("INVALID_CATEGORY", "category ID is required")
	}
	if strings.TrimSpace(categoryName) == "" {
		return errors.NewValidationError("INVALID_CATEGORY", "category name is required")
	}
	r.CategoryID = &categoryID
	r.Category = categoryName
	r.UpdatedAt = time.Now()
	return nil
}

// CategoryConsistent reports whether the cached category text agrees with the
// given resolved category name. Comparison is case-insensitive because the
// historical data carries mixed casing.
func (r *Requirement) CategoryConsistent(resolvedName string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Category), strings.TrimSpace(resolvedName))
}

// HasApplicableGroup reports whether the requirement applies to the given
// implementation group (e.g. "IG2")
func (r *Requirement) HasApplicableGroup(group string) bool {
	for _, g := range r.ApplicableGroups {
		if strings.EqualFold(g, group) {
			return true
		}
	}
	return false
}

// Deactivate soft-retires the requirement
func (r *Requirement) Deactivate() error {
	if !r.IsActive {
		return errors.NewConflictError("requirement is already inactive")
	}
	r.IsActive = false
	r.UpdatedAt = time.Now()
	return nil
}

// AddTag appends a tag unless it is already present
func (r *Requirement) AddTag(tag string) {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return
		}
	}
	r.Tags = append(r.Tags, tag)
	r.UpdatedAt = time.Now()
}
