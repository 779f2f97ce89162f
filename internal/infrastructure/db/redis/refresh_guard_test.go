package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, ttl time.Duration) (*RefreshGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRefreshGuard(client, ttl), mr
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
}

func TestRefreshGuard_ClaimOnce(t *testing.T) {
	g, _ := newGuard(t, time.Minute)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Claim(ctx, "token-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshGuard_KeyIsDigest(t *testing.T) {
	g, mr := newGuard(t, time.Minute)

	_, err := g.Claim(context.Background(), "secret-token")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "secret-token")
	assert.Equal(t, g.key("secret-token"), keys[0])
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestRefreshGuard_Release(t *testing.T) {
	g, _ := newGuard(t, time.Minute)
	ctx := context.Background()

	_, err := g.Claim(ctx, "token-a")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "token-a"))

	ok, err := g.Claim(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshGuard_ClaimExpires(t *testing.T) {
	g, mr := newGuard(t, 5*time.Second)
	ctx := context.Background()

	_, err := g.Claim(ctx, "token-a")
	require.NoError(t, err)
	mr.FastForward(6 * time.Second)

	ok, err := g.Claim(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshGuard_ConcurrentSingleWinner(t *testing.T) {
	g, _ := newGuard(t, time.Minute)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := g.Claim(ctx, "shared"); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRefreshGuard_ServerDown(t *testing.T) {
	g, mr := newGuard(t, time.Minute)
	mr.Close()

	_, err := g.Claim(context.Background(), "token-a")
	require.Error(t, err)
}

func TestNewRefreshGuard_DefaultTTL(t *testing.T) {
	g, mr := newGuard(t, 0)

	_, err := g.Claim(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.Equal(t, DefaultClaimTTL, mr.TTL(g.key("unknown-token")))
	assert.LessOrEqual(t, DefaultClaimTTL, 10*time.Second)
}
