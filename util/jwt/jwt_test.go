package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.NotEmpty(t, claims.JTI)
	require.True(t, claims.Exp.After(time.Now()))
}

func TestParse_NoBearerPrefix(t *testing.T) {
	tok, err := Issue("secret", 7, "user", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", 42, "user", time.Hour)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other-secret")
	require.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Issue("secret", 42, "user", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "secret")
	require.Error(t, err)
}

func TestParse_Missing(t *testing.T) {
	_, err := ParseAuth("", "secret")
	require.Error(t, err)
}

func TestFromMapClaims_MissingRole(t *testing.T) {
	_, err := FromMapClaims(map[string]interface{}{"sub": float64(1)})
	require.Error(t, err)
}
