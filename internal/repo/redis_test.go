package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/accounts/internal/domain"
)

func newTestRedisBlacklist(t *testing.T) (*RedisBlacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisBlacklist(client), mr
}

func TestRedisBlacklist_RevokeAndCheck(t *testing.T) {
	bl, mr := newTestRedisBlacklist(t)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := bl.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, jti, time.Now().Add(10*time.Minute)))
	require.NoError(t, bl.Revoke(ctx, jti, time.Now().Add(10*time.Minute)))

	revoked, err = bl.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL("revoked:" + jti)
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 2)
}

func TestRedisBlacklist_EntryExpiresWithToken(t *testing.T) {
	bl, mr := newTestRedisBlacklist(t)
	ctx := context.Background()
	jti := uuid.NewString()

	require.NoError(t, bl.Revoke(ctx, jti, time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := bl.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisBlacklist_Unavailable_StoreError(t *testing.T) {
	bl, mr := newTestRedisBlacklist(t)
	mr.Close()

	_, err := bl.IsRevoked(context.Background(), "jti")
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))
}
