package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken("alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Type)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenIDsAreUnique(t *testing.T) {
	InitJWT("test-secret")

	first, err := GenerateToken("alice", "user")
	require.NoError(t, err)
	second, err := GenerateToken("alice", "user")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	InitJWT("test-secret")
	token, err := GenerateToken("alice", "user")
	require.NoError(t, err)

	InitJWT("other-secret")
	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	InitJWT("test-secret")

	_, err := ValidateToken("not.a.token")
	require.Error(t, err)
}
