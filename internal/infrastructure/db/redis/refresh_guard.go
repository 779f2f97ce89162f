package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimTTL bounds how long a presented refresh token stays claimed.
// Claims are taken before the store checks the token, so unknown tokens also
// leave a key behind until it expires.
const DefaultClaimTTL = 10 * time.Second

// RefreshGuard rejects a second presentation of the same refresh token while
// the first is still in flight. Keys hold a digest, never the raw token.
// Key format: refresh:claim:<hex sha256>
type RefreshGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRefreshGuard(client *redis.Client, ttl time.Duration) *RefreshGuard {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RefreshGuard{client: client, ttl: ttl}
}

// Claim reports whether the caller is the first to present token.
func (g *RefreshGuard) Claim(ctx context.Context, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(token), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("refresh claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim so the token can be presented again.
func (g *RefreshGuard) Release(ctx context.Context, token string) error {
	if err := g.client.Del(ctx, g.key(token)).Err(); err != nil {
		return fmt.Errorf("refresh release: %w", err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (g *RefreshGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *RefreshGuard) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "refresh:claim:" + hex.EncodeToString(sum[:])
}
