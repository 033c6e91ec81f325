// Package testutil carries shared test helpers and, under fixtures/, builders
// for the domain entities.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestContext returns a context that is cancelled when the test ends and
// times out after 30s so a hung test fails instead of stalling the run
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// GenerateUUID returns a fresh random UUID, failing the test on entropy errors
func GenerateUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id
}

// AssertTimeWithin fails unless actual is within delta of expected. Use it for
// timestamps stamped with time.Now inside the code under test.
func AssertTimeWithin(t *testing.T, actual, expected time.Time, delta time.Duration) {
	t.Helper()
	diff := actual.Sub(expected).Abs()
	require.LessOrEqual(t, diff, delta,
		"expected %v within %v of %v (off by %v)", actual, delta, expected, diff)
}

// Ptr returns a pointer to v, for filling optional fields inline
func Ptr[T any](v T) *T {
	return &v
}
