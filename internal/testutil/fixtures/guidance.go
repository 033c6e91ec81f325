package fixtures

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

// GuidanceVersionBuilder builds guidance versions at any lifecycle stage
type GuidanceVersionBuilder struct {
	t                    *testing.T
	unifiedRequirementID uuid.UUID
	versionNumber        int
	blocks               []guidance.Block
	rowCap               int
}

// NewGuidanceVersionBuilder creates a builder with a two-block body
func NewGuidanceVersionBuilder(t *testing.T) *GuidanceVersionBuilder {
	t.Helper()
	return &GuidanceVersionBuilder{
		t:                    t,
		unifiedRequirementID: uuid.New(),
		versionNumber:        1,
		rowCap:               guidance.DefaultRowCap,
		blocks: []guidance.Block{
			{ID: uuid.New(), Order: 1, Kind: guidance.BlockIntro, Content: "why this control matters"},
			{ID: uuid.New(), Order: 2, Kind: guidance.BlockBaseline, Content: "what auditors expect to see"},
		},
	}
}

// ForRequirement sets the unified requirement the version belongs to
func (b *GuidanceVersionBuilder) ForRequirement(unifiedRequirementID uuid.UUID) *GuidanceVersionBuilder {
	b.unifiedRequirementID = unifiedRequirementID
	return b
}

// WithNumber sets the version number
func (b *GuidanceVersionBuilder) WithNumber(n int) *GuidanceVersionBuilder {
	b.versionNumber = n
	return b
}

// WithBlocks replaces the content blocks
func (b *GuidanceVersionBuilder) WithBlocks(blocks []guidance.Block) *GuidanceVersionBuilder {
	b.blocks = blocks
	return b
}

// Draft creates the version in draft/editing state
func (b *GuidanceVersionBuilder) Draft() *guidance.Version {
	b.t.Helper()
	v, err := guidance.NewDraftVersion(b.unifiedRequirementID, b.versionNumber, b.blocks, b.rowCap, uuid.New())
	require.NoError(b.t, err)
	return v
}

// Published walks the version through review, approval and publish
func (b *GuidanceVersionBuilder) Published() *guidance.Version {
	b.t.Helper()
	v := b.Draft()
	require.NoError(b.t, v.SubmitForReview(uuid.New()))
	require.NoError(b.t, v.MarkReviewed(uuid.New()))
	require.NoError(b.t, v.Approve(uuid.New()))
	require.NoError(b.t, v.Publish(uuid.New()))
	return v
}
