package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstudio-site/internal/common/cache"
	"devstudio-site/internal/common/config"
)

func createTestGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewGuard(client, "contact:idem:", time.Hour), mr
}

func TestGuard_ClaimOnce(t *testing.T) {
	g, mr := createTestGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("contact:idem:abc"))
	assert.Equal(t, time.Hour, mr.TTL("contact:idem:abc"))

	ok, err = g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_ReleaseAllowsReclaim(t *testing.T) {
	g, _ := createTestGuard(t)
	ctx := context.Background()

	_, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx, "abc"))

	ok, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_ExpiredKeyCanBeClaimed(t *testing.T) {
	g, mr := createTestGuard(t)
	ctx := context.Background()

	_, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	ok, err := g.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_EmptyKeyAndNilGuard(t *testing.T) {
	g, mr := createTestGuard(t)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "  ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mr.Keys())

	var nilGuard *Guard
	ok, err = nilGuard.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, nilGuard.Release(ctx, "abc"))
}

func TestGuard_LongKeyRejected(t *testing.T) {
	g, _ := createTestGuard(t)
	_, err := g.Claim(context.Background(), strings.Repeat("k", maxKeyLength+1))
	assert.Error(t, err)
}

func TestGuard_StoreUnavailable(t *testing.T) {
	g, mr := createTestGuard(t)
	mr.Close()

	_, err := g.Claim(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim idempotency key")
}
