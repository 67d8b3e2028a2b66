package session

import (
	"context"
	"testing"
	"time"

	"freelance-marketplace/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RefreshIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	userID := uuid.New()

	require.NoError(t, s.SaveRefresh(ctx, "tok", userID, time.Hour))

	got, err := s.ConsumeRefresh(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = s.ConsumeRefresh(ctx, "tok")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.SaveRefresh(ctx, "tok", uuid.New(), time.Minute))
	require.NoError(t, s.RevokeAccess(ctx, "jti", time.Minute))

	revoked, err := s.IsAccessRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)

	revoked, err = s.IsAccessRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = s.ConsumeRefresh(ctx, "tok")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
