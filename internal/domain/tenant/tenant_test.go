package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	o, err := NewOrganization("Acme GmbH", KindStandard, "manufacturing", "51-200")
	require.NoError(t, err)
	assert.True(t, o.CountsTowardBenchmarks())
	assert.False(t, o.CanReseed())
	assert.False(t, o.PublicRead())

	_, err = NewOrganization("", KindStandard, "", "")
	require.Error(t, err)

	_, err = NewOrganization("Acme", Kind("trial"), "", "")
	require.Error(t, err)
}

func TestDemoCapabilities(t *testing.T) {
	demo, err := NewOrganization("AuditReady Demo", KindDemo, "technology", "11-50")
	require.NoError(t, err)
	assert.True(t, demo.CanReseed())
	assert.True(t, demo.PublicRead())
	assert.False(t, demo.CountsTowardBenchmarks())

	internal, err := NewOrganization("Platform QA", KindInternal, "", "")
	require.NoError(t, err)
	assert.False(t, internal.CanReseed())
	assert.False(t, internal.CountsTowardBenchmarks())
}
