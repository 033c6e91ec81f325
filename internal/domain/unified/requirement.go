package unified

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Requirement is one consolidated cross-framework requirement under a
// unified category. Its sub-requirements are the lettered statements
// (a, b, c, ...) that individual framework controls map into.
type Requirement struct {
	ID              uuid.UUID        `json:"id"`
	CategoryID      uuid.UUID        `json:"category_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	SubRequirements []SubRequirement `json:"sub_requirements"`
	SortOrder       int              `json:"sort_order"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SubRequirement is one lettered statement within a unified requirement
type SubRequirement struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// NewRequirement creates a unified requirement with validation. Statements
// are lettered in order: a, b, c, ...
func NewRequirement(categoryID uuid.UUID, title, description string, statements []string) (*Requirement, error) {
	if categoryID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_CATEGORY", "category ID is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.NewValidationError("INVALID_TITLE", "unified requirement title is required")
	}

	subs := make([]SubRequirement, 0, len(statements))
	for i, text := range statements {
		if strings.TrimSpace(text) == "" {
			return nil, errors.NewValidationError("INVALID_SUB_REQUIREMENT",
				fmt.Sprintf("sub-requirement %d is empty", i+1))
		}
		subs = append(subs, SubRequirement{
			Letter: letterFor(i),
			Text:   strings.TrimSpace(text),
		})
	}

	now := time.Now()
	return &Requirement{
		ID:              uuid.New(),
		CategoryID:      categoryID,
		Title:           strings.TrimSpace(title),
		Description:     description,
		SubRequirements: subs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AppendSubRequirement adds a lettered statement at the end
func (r *Requirement) AppendSubRequirement(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NewValidationError("INVALID_SUB_REQUIREMENT", "sub-requirement text is required")
	}
	r.SubRequirements = append(r.SubRequirements, SubRequirement{
		Letter: letterFor(len(r.SubRequirements)),
		Text:   strings.TrimSpace(text),
	})
	r.UpdatedAt = time.Now()
	return nil
}

// letterFor produces the statement letter for a zero-based index:
// a..z, then aa, ab, ... for the rare requirement that runs past 26.
func letterFor(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return string(rune('a'+i/26-1)) + string(rune('a'+i%26))
}
