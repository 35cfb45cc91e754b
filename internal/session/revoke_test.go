package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "expired", now.Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = r.IsRevoked(ctx, "expired")
	assert.False(t, revoked, "tokens past expiry are not tracked")

	revoked, _ = r.IsRevoked(ctx, "b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = r.IsRevoked(ctx, "a")
	assert.False(t, revoked, "revocation lapses once the token would have expired")

	require.NoError(t, r.Revoke(ctx, "c", now.Add(time.Hour)))
	assert.Len(t, r.revoked, 1, "lapsed entries are pruned on write")
}

func TestNewRedisRevoker_InvalidURL(t *testing.T) {
	_, err := NewRedisRevoker(context.Background(), "not-a-redis-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.ParseURL")
}

func TestRedisRevoker_Integration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}

	ctx := context.Background()
	r, err := NewRedisRevoker(ctx, redisURL)
	require.NoError(t, err)
	defer r.Close()

	id := uuid.NewString()
	revoked, err := r.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, id, time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, revoked)
}
