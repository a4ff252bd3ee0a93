package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokens_RoundTrip(t *testing.T) {
	tokens := NewJWTTokens("test-secret")

	issued, err := tokens.Issue("gateway", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued)

	principal, err := tokens.Verify(issued)
	require.NoError(t, err)
	assert.Equal(t, "gateway", principal)
}

func TestJWTTokens_Verify(t *testing.T) {
	tokens := NewJWTTokens("test-secret")

	t.Run("expired token rejected", func(t *testing.T) {
		issued, err := tokens.Issue("gateway", -time.Minute)
		require.NoError(t, err)
		_, err = tokens.Verify(issued)
		require.Error(t, err)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTTokens("other-secret")
		issued, err := other.Issue("gateway", time.Hour)
		require.NoError(t, err)
		_, err = tokens.Verify(issued)
		require.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := tokens.Verify("not.a.jwt")
		require.Error(t, err)
	})
}
