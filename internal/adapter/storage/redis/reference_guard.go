package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReferenceGuard implements ports.ReferenceGuard using Redis SET NX. The
// claim happens before any wire call, so a duplicate reference number is
// rejected without the exchange ever seeing it.
type ReferenceGuard struct {
	client *goredis.Client
	prefix string
}

// NewReferenceGuard creates a new Redis-backed reference guard.
func NewReferenceGuard(client *goredis.Client) *ReferenceGuard {
	return &ReferenceGuard{
		client: client,
		prefix: "ref_no:",
	}
}

// Claim atomically claims a reference number.
// Returns true if the reference is new, false if already claimed.
func (g *ReferenceGuard) Claim(ctx context.Context, refNo string, ttl time.Duration) (bool, error) {
	result, err := g.client.SetArgs(ctx, g.prefix+refNo, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, an earlier submission claimed this reference.
			return false, nil
		}
		return false, fmt.Errorf("redis reference claim: %w", err)
	}
	return result == "OK", nil
}

// Release frees a claim after a submission that never reached the exchange.
func (g *ReferenceGuard) Release(ctx context.Context, refNo string) error {
	if err := g.client.Del(ctx, g.prefix+refNo).Err(); err != nil {
		return fmt.Errorf("redis reference release: %w", err)
	}
	return nil
}
