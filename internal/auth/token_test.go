package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	token, expiresAt, err := tm.GenerateToken(42, domain.RoleTechnician)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, claims.Role)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 15).GenerateToken(1, domain.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 15).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.ParseToken(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("swordfish", 0) // out-of-range cost falls back to default
	require.NoError(t, err)
	require.NotEqual(t, "swordfish", hash)

	assert.NoError(t, ComparePassword(hash, "swordfish"))
	assert.Error(t, ComparePassword(hash, "sWordfish"))
}
