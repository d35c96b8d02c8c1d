package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/helpdesk/internal/config"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

func newAuthFixture(t *testing.T) (*memStore, *AuthService) {
	t.Helper()
	store := newMemStore()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
	}, &fakeUserRepo{store: store})
	return store, svc
}

func seedAccount(t *testing.T, store *memStore, username, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := store.addUser(domain.RoleUser, active)
	user.Username = username
	user.PasswordHash = string(hash)
	return user
}

func TestLogin(t *testing.T) {
	store, svc := newAuthFixture(t)
	user := seedAccount(t, store, "jdoe", "hunter22x", true)

	result, err := svc.Login(context.Background(), "jdoe", "hunter22x")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	parsedID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsedID)
	assert.Equal(t, user.Role, claims.Role)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	store, svc := newAuthFixture(t)
	seedAccount(t, store, "jdoe", "hunter22x", true)
	seedAccount(t, store, "gone", "hunter22x", false)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "nobody", "hunter22x"},
		{"wrong password", "jdoe", "wrong"},
		{"deactivated account", "gone", "hunter22x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
			assert.EqualError(t, err, "invalid credentials", "every failure mode reads the same")
		})
	}
}
