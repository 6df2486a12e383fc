// Package idempotency guards against the same inquiry being forwarded twice.
package idempotency

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HeaderName is the request header carrying the client's key.
const HeaderName = "Idempotency-Key"

// maxKeyLength bounds client keys before they reach redis.
const maxKeyLength = 128

// Store is the subset of the redis client used for claims.
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Guard claims keys for a TTL. A nil Guard accepts every key.
type Guard struct {
	store  Store
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewGuard(store Store, prefix string, ttl time.Duration) *Guard {
	return &Guard{store: store, prefix: prefix, ttl: ttl, now: time.Now}
}

// Claim records key and reports whether this is its first use. An empty key
// is always accepted and never stored.
func (g *Guard) Claim(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if g == nil || key == "" {
		return true, nil
	}
	if len(key) > maxKeyLength {
		return false, fmt.Errorf("idempotency key longer than %d characters", maxKeyLength)
	}
	ok, err := g.store.SetNX(ctx, g.prefix+key, g.now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release forgets key so a failed delivery can be retried with it.
func (g *Guard) Release(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if g == nil || key == "" {
		return nil
	}
	if err := g.store.Del(ctx, g.prefix+key); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
