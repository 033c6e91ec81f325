package unified

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Category is a cross-framework grouping such as "Governance & Leadership"
// or "Access Control". The taxonomy is small (a few dozen rows) and
// read-mostly; names are unique.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates a unified category with validation
func NewCategory(name, description string, sortOrder int) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationError("INVALID_NAME", "category name is required")
	}

	now := time.Now()
	return &Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		SortOrder:   sortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MatchesName reports whether the given text names this category,
// ignoring case and surrounding whitespace.
func (c *Category) MatchesName(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), c.Name)
}

// Deactivate soft-retires the category
func (c *Category) Deactivate() error {
	if !c.IsActive {
		return errors.NewConflictError("category is already inactive")
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	return nil
}
