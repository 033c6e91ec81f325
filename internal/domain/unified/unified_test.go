package unified

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Risk Management", "Risk identification and treatment", 3)
	require.NoError(t, err)
	assert.Equal(t, "Risk Management", c.Name)
	assert.True(t, c.IsActive)

	_, err = NewCategory("   ", "", 0)
	require.Error(t, err)
}

func TestCategory_MatchesName(t *testing.T) {
	c, err := NewCategory("Access Control", "", 1)
	require.NoError(t, err)

	assert.True(t, c.MatchesName("access control"))
	assert.True(t, c.MatchesName("  ACCESS CONTROL  "))
	assert.False(t, c.MatchesName("Network Security"))
}

func TestNewRequirement_LettersSubRequirements(t *testing.T) {
	r, err := NewRequirement(uuid.New(), "Identity & Access Governance", "desc", []string{
		"Maintain an inventory of accounts",
		"Review access rights quarterly",
		"Disable dormant accounts",
	})
	require.NoError(t, err)
	require.Len(t, r.SubRequirements, 3)
	assert.Equal(t, "a", r.SubRequirements[0].Letter)
	assert.Equal(t, "b", r.SubRequirements[1].Letter)
	assert.Equal(t, "c", r.SubRequirements[2].Letter)

	require.NoError(t, r.AppendSubRequirement("Log access changes"))
	assert.Equal(t, "d", r.SubRequirements[3].Letter)
}

func TestNewRequirement_Validation(t *testing.T) {
	_, err := NewRequirement(uuid.Nil, "title", "", nil)
	require.Error(t, err)

	_, err = NewRequirement(uuid.New(), "", "", nil)
	require.Error(t, err)

	_, err = NewRequirement(uuid.New(), "title", "", []string{"ok", "  "})
	require.Error(t, err)
}

func TestLetterFor_WrapsPastZ(t *testing.T) {
	assert.Equal(t, "a", letterFor(0))
	assert.Equal(t, "z", letterFor(25))
	assert.Equal(t, "aa", letterFor(26))
	assert.Equal(t, "ab", letterFor(27))
}

func TestNewMapping(t *testing.T) {
	unifiedID := uuid.New()
	requirementID := uuid.New()

	m, err := NewMapping(unifiedID, requirementID, StrengthStrong, "covers statements a-c")
	require.NoError(t, err)
	assert.Equal(t, StrengthStrong, m.Strength)

	_, err = NewMapping(uuid.Nil, requirementID, StrengthExact, "")
	require.Error(t, err)

	_, err = NewMapping(unifiedID, uuid.Nil, StrengthExact, "")
	require.Error(t, err)

	_, err = NewMapping(unifiedID, requirementID, MappingStrength("weak"), "")
	require.Error(t, err)
}

func TestMapping_Restrength(t *testing.T) {
	m, err := NewMapping(uuid.New(), uuid.New(), StrengthPartial, "initial")
	require.NoError(t, err)

	// A strength change without an audit note is rejected
	err = m.Restrength(StrengthExact, "")
	require.Error(t, err)
	assert.Equal(t, StrengthPartial, m.Strength)

	require.NoError(t, m.Restrength(StrengthExact, "re-reviewed against 2022 revision"))
	assert.Equal(t, StrengthExact, m.Strength)
	assert.Equal(t, "re-reviewed against 2022 revision", m.Notes)
}
