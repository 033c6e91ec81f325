package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/tenant"
)

// Claims are the platform's JWT claims. Identity lives in the external
// identity provider; this layer only verifies tokens and extracts the
// actor and tenant context that service calls need.
type Claims struct {
	ActorID        uuid.UUID   `json:"actor_id"`
	Email          string      `json:"email"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	TenantKind     tenant.Kind `json:"tenant_kind"`
	Role           string      `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and extracts claims
type Verifier struct {
	secret []byte
	expiry time.Duration
}

// NewVerifier creates a token verifier with an HMAC signing secret
func NewVerifier(secret string, expiry time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), expiry: expiry}
}

// IssueToken signs a token for the given actor. Used by tests and internal
// tooling; production tokens come from the identity provider.
func (v *Verifier) IssueToken(actorID uuid.UUID, email string, organizationID uuid.UUID, kind tenant.Kind, role string) (string, error) {
	if actorID == uuid.Nil {
		return "", errors.NewValidationError("INVALID_ACTOR", "actor ID is required")
	}
	if !kind.IsValid() {
		return "", errors.NewValidationError("INVALID_KIND", "unknown tenant kind: "+string(kind))
	}

	now := time.Now()
	claims := Claims{
		ActorID:        actorID,
		Email:          email,
		OrganizationID: organizationID,
		TenantKind:     kind,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auditready",
			Subject:   actorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign token").WithCause(err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewValidationError("INVALID_SIGNING_METHOD",
				"unexpected signing method: "+t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithIssuer("auditready"), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.NewValidationError("INVALID_TOKEN", "token validation failed").WithCause(err)
	}
	if !token.Valid {
		return nil, errors.NewValidationError("INVALID_TOKEN", "token is not valid")
	}
	if claims.ActorID == uuid.Nil {
		return nil, errors.NewValidationError("INVALID_TOKEN", "token carries no actor")
	}
	if !claims.TenantKind.IsValid() {
		return nil, errors.NewValidationError("INVALID_TOKEN", "token carries an unknown tenant kind")
	}
	return claims, nil
}
