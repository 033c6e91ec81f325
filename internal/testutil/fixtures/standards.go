package fixtures

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/standards"
)

// StandardBuilder builds test Standard entities
type StandardBuilder struct {
	t            *testing.T
	slug         string
	name         string
	version      string
	standardType standards.StandardType
	active       bool
}

// NewStandardBuilder creates a StandardBuilder with defaults
func NewStandardBuilder(t *testing.T) *StandardBuilder {
	t.Helper()
	return &StandardBuilder{
		t:            t,
		slug:         "iso-27001-2022",
		name:         "ISO 27001",
		version:      "2022",
		standardType: standards.TypeFramework,
		active:       true,
	}
}

// WithSlug sets the slug, name and version together so the fixture stays
// internally consistent
func (b *StandardBuilder) WithSlug(slug, name, version string) *StandardBuilder {
	b.slug = slug
	b.name = name
	b.version = version
	return b
}

// WithType sets the standard type
func (b *StandardBuilder) WithType(standardType standards.StandardType) *StandardBuilder {
	b.standardType = standardType
	return b
}

// Inactive marks the built standard as deactivated
func (b *StandardBuilder) Inactive() *StandardBuilder {
	b.active = false
	return b
}

// Build creates the Standard
func (b *StandardBuilder) Build() *standards.Standard {
	b.t.Helper()
	s, err := standards.NewStandard(b.slug, b.name, b.version, b.standardType)
	require.NoError(b.t, err)
	if !b.active {
		require.NoError(b.t, s.Deactivate())
	}
	return s
}

// RequirementBuilder builds test library Requirement entities
type RequirementBuilder struct {
	t           *testing.T
	standardID  uuid.UUID
	code        string
	title       string
	description string
	priority    standards.Priority
}

// NewRequirementBuilder creates a RequirementBuilder with defaults
func NewRequirementBuilder(t *testing.T) *RequirementBuilder {
	t.Helper()
	return &RequirementBuilder{
		t:          t,
		standardID: uuid.New(),
		code:       "A.5.1",
		title:      "Policies for information security",
		priority:   standards.PriorityMedium,
	}
}

// WithStandard sets the owning standard
func (b *RequirementBuilder) WithStandard(standardID uuid.UUID) *RequirementBuilder {
	b.standardID = standardID
	return b
}

// WithCode sets the requirement code and title
func (b *RequirementBuilder) WithCode(code, title string) *RequirementBuilder {
	b.code = code
	b.title = title
	return b
}

// WithPriority sets the priority
func (b *RequirementBuilder) WithPriority(priority standards.Priority) *RequirementBuilder {
	b.priority = priority
	return b
}

// Build creates the Requirement
func (b *RequirementBuilder) Build() *standards.Requirement {
	b.t.Helper()
	r, err := standards.NewRequirement(b.standardID, b.code, b.title, b.description, b.priority)
	require.NoError(b.t, err)
	return r
}

// RequirementList builds n requirements under one standard with distinct codes
func RequirementList(t *testing.T, standardID uuid.UUID, n int) []*standards.Requirement {
	t.Helper()
	reqs := make([]*standards.Requirement, n)
	for i := range reqs {
		reqs[i] = NewRequirementBuilder(t).
			WithStandard(standardID).
			WithCode(fmt.Sprintf("A.5.%d", i+1), fmt.Sprintf("control %d", i+1)).
			Build()
	}
	return reqs
}
