package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret", time.Hour)
	actorID := uuid.New()
	orgID := uuid.New()

	token, err := v.IssueToken(actorID, "reviewer@example.com", orgID, tenant.KindStandard, "reviewer")
	require.NoError(t, err)

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, actorID, claims.ActorID)
	assert.Equal(t, orgID, claims.OrganizationID)
	assert.Equal(t, tenant.KindStandard, claims.TenantKind)
	assert.Equal(t, "reviewer", claims.Role)
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a", time.Hour)
	verifier := NewVerifier("secret-b", time.Hour)

	token, err := issuer.IssueToken(uuid.New(), "a@example.com", uuid.New(), tenant.KindDemo, "viewer")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifier_RejectsExpiredToken(t *testing.T) {
	v := NewVerifier("test-secret", -time.Minute)

	token, err := v.IssueToken(uuid.New(), "a@example.com", uuid.New(), tenant.KindStandard, "editor")
	require.NoError(t, err)

	_, err = v.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifier_RejectsUnknownTenantKind(t *testing.T) {
	v := NewVerifier("test-secret", time.Hour)

	_, err := v.IssueToken(uuid.New(), "a@example.com", uuid.New(), tenant.Kind("trial"), "editor")
	require.Error(t, err)
}

func TestVerifier_RejectsGarbage(t *testing.T) {
	v := NewVerifier("test-secret", time.Hour)
	_, err := v.VerifyToken("not-a-token")
	require.Error(t, err)
}
