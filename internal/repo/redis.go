package repo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/accounts/internal/domain"
)

const defaultRedisPrefix = "revoked:"

// RedisBlacklist keeps each revoked jti until the token itself would have
// expired; Redis drops the key afterwards.
type RedisBlacklist struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{Client: client, Prefix: defaultRedisPrefix}
}

func (b *RedisBlacklist) key(jti string) string {
	if b.Prefix == "" {
		return defaultRedisPrefix + jti
	}
	return b.Prefix + jti
}

func (b *RedisBlacklist) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := b.Client.Set(ctx, b.key(jti), 1, ttl).Err(); err != nil {
		return domain.NewStoreError("revoke token", err)
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.Client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, domain.NewStoreError("check revoked", err)
	}
	return n > 0, nil
}

func (b *RedisBlacklist) Ping(ctx context.Context) error {
	return b.Client.Ping(ctx).Err()
}
