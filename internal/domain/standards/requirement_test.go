package standards

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

func TestNewStandard(t *testing.T) {
	tests := []struct {
		name         string
		slug         string
		stdName      string
		version      string
		standardType StandardType
		wantErr      bool
	}{
		{
			name:         "valid framework",
			slug:         "iso-27001-2022",
			stdName:      "ISO 27001",
			version:      "2022",
			standardType: TypeFramework,
		},
		{
			name:         "valid regulation",
			slug:         "gdpr",
			stdName:      "GDPR",
			standardType: TypeRegulation,
		},
		{
			name:         "missing slug",
			stdName:      "ISO 27001",
			standardType: TypeFramework,
			wantErr:      true,
		},
		{
			name:         "unknown type",
			slug:         "cis-ig2",
			stdName:      "CIS Controls",
			standardType: StandardType("benchmark"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStandard(tt.slug, tt.stdName, tt.version, tt.standardType)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, s.ID)
			assert.True(t, s.IsActive)
		})
	}
}

func TestStandard_Deactivate(t *testing.T) {
	s, err := NewStandard("nis2", "NIS2 Directive", "2023", TypeRegulation)
	require.NoError(t, err)

	require.NoError(t, s.Deactivate())
	assert.False(t, s.IsActive)

	err = s.Deactivate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	require.NoError(t, s.Reactivate())
	assert.True(t, s.IsActive)
}

func TestStandard_DisplayName(t *testing.T) {
	s, err := NewStandard("iso-27002-2022", "ISO 27002", "2022", TypeFramework)
	require.NoError(t, err)
	assert.Equal(t, "ISO 27002 2022", s.DisplayName())

	s.Version = ""
	assert.Equal(t, "ISO 27002", s.DisplayName())
}

func TestNewRequirement(t *testing.T) {
	standardID := uuid.New()

	r, err := NewRequirement(standardID, "A.5.34", "Privacy and protection of PII", "The organization should...", PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "A.5.34", r.Code)
	assert.True(t, r.IsActive)
	assert.Nil(t, r.CategoryID)

	_, err = NewRequirement(uuid.Nil, "A.5.34", "t", "d", PriorityHigh)
	require.Error(t, err)

	_, err = NewRequirement(standardID, "  ", "t", "d", PriorityHigh)
	require.Error(t, err)

	_, err = NewRequirement(standardID, "A.5.34", "t", "d", Priority("urgent"))
	require.Error(t, err)
}

func TestRequirement_SetCategory(t *testing.T) {
	r, err := NewRequirement(uuid.New(), "6.1.2", "Access control policy", "desc", PriorityCritical)
	require.NoError(t, err)

	categoryID := uuid.New()
	require.NoError(t, r.SetCategory(categoryID, "Access Control"))

	// FK and cached text always move together
	assert.Equal(t, &categoryID, r.CategoryID)
	assert.Equal(t, "Access Control", r.Category)

	err = r.SetCategory(uuid.Nil, "Access Control")
	require.Error(t, err)
}

func TestRequirement_CategoryConsistent(t *testing.T) {
	r, err := NewRequirement(uuid.New(), "5.1", "Policies for information security", "desc", PriorityMedium)
	require.NoError(t, err)
	require.NoError(t, r.SetCategory(uuid.New(), "Governance & Leadership"))

	assert.True(t, r.CategoryConsistent("governance & leadership"))
	assert.True(t, r.CategoryConsistent(" Governance & Leadership "))
	assert.False(t, r.CategoryConsistent("Network Security"))
}

func TestRequirement_HasApplicableGroup(t *testing.T) {
	r, err := NewRequirement(uuid.New(), "1.1", "Asset inventory", "desc", PriorityHigh)
	require.NoError(t, err)
	r.ApplicableGroups = []string{GroupIG1, GroupIG2}

	assert.True(t, r.HasApplicableGroup("IG1"))
	assert.True(t, r.HasApplicableGroup("ig2"))
	assert.False(t, r.HasApplicableGroup(GroupIG3))
}

func TestRequirement_AddTag(t *testing.T) {
	r, err := NewRequirement(uuid.New(), "8.12", "Data leakage prevention", "desc", PriorityMedium)
	require.NoError(t, err)

	r.AddTag("dlp")
	r.AddTag("DLP")
	assert.Equal(t, []string{"dlp"}, r.Tags)
}
