package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/repos"
	"storefront/internal/services"
)

func TestAuthUnlock(t *testing.T) {
	ctx := context.Background()
	sessions := repos.NewSessionRepo(memStore(t))
	auth, err := services.NewAuthService(sessions, "frango123", "", time.Hour)
	require.NoError(t, err)

	_, err = auth.Unlock(ctx, "sid-1", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCode)
	assert.False(t, auth.IsAdmin(ctx, "sid-1"))

	s, err := auth.Unlock(ctx, "sid-1", "frango123")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", s.SessionID)
	assert.True(t, auth.IsAdmin(ctx, "sid-1"))
	assert.False(t, auth.IsAdmin(ctx, "sid-2"))

	require.NoError(t, auth.Lock(ctx, "sid-1"))
	assert.False(t, auth.IsAdmin(ctx, "sid-1"))
}

func TestAuthUnlock_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo"), bcrypt.MinCost)
	require.NoError(t, err)
	auth, err := services.NewAuthService(repos.NewSessionRepo(memStore(t)), "ignored", string(hash), time.Hour)
	require.NoError(t, err)

	_, err = auth.Unlock(context.Background(), "sid", "segredo")
	assert.NoError(t, err)
}

func TestAuthUnlock_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	auth, err := services.NewAuthService(repos.NewSessionRepo(memStore(t)), "frango123", "", -time.Minute)
	require.NoError(t, err)

	_, err = auth.Unlock(ctx, "sid", "frango123")
	require.NoError(t, err)
	assert.False(t, auth.IsAdmin(ctx, "sid"))
}

func TestAuthUnlock_NotConfigured(t *testing.T) {
	auth, err := services.NewAuthService(repos.NewSessionRepo(memStore(t)), "", "", time.Hour)
	require.NoError(t, err)

	_, err = auth.Unlock(context.Background(), "sid", "")
	assert.ErrorIs(t, err, services.ErrAdminDisabled)
}
