package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// PurchaseDedup provides purchase idempotency checks backed by Redis.
// Key format: purchase:<username>:<idempotency_key>
type PurchaseDedup struct {
	client *redis.Client
}

// NewPurchaseDedup creates a PurchaseDedup wrapping the given Redis client.
func NewPurchaseDedup(client *redis.Client) *PurchaseDedup {
	return &PurchaseDedup{client: client}
}

// IsDuplicate reports whether this purchase submission was already seen.
func (d *PurchaseDedup) IsDuplicate(ctx context.Context, username, idempotencyKey string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(username, idempotencyKey)).Result()
	if err != nil {
		return false, fmt.Errorf("purchase dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this submission was accepted (expires after dedupTTL).
func (d *PurchaseDedup) Mark(ctx context.Context, username, idempotencyKey string) error {
	return d.client.Set(ctx, d.key(username, idempotencyKey), "1", dedupTTL).Err()
}

func (d *PurchaseDedup) key(username, idempotencyKey string) string {
	return fmt.Sprintf("purchase:%s:%s", username, idempotencyKey)
}
