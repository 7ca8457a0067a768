package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/luccasmb/chainhook/internal/webhook"

	"github.com/google/uuid"
)

// claimKeyPrefix namespaces delivery-attempt claims in Redis.
const claimKeyPrefix = "webhook"

// deliveryClaimKey builds the key guarding one delivery's attempt.
func deliveryClaimKey(deliveryID uuid.UUID) string {
	return fmt.Sprintf("%s:attempt:%s", claimKeyPrefix, deliveryID)
}

// ClaimDelivery implements webhook.ClaimGuard using SET NX with a TTL. Only
// one process can hold the claim for a delivery at a time; a crashed holder
// frees the delivery when the TTL lapses, and the sweeper re-admits it.
func (c *client) ClaimDelivery(ctx context.Context, deliveryID uuid.UUID, ttl time.Duration) error {
	ok, err := c.conn.SetNX(ctx, deliveryClaimKey(deliveryID), "", ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return webhook.ErrAttemptInProgress
	}

	return nil
}

// ReleaseDelivery implements webhook.ClaimGuard.
func (c *client) ReleaseDelivery(ctx context.Context, deliveryID uuid.UUID) error {
	return c.conn.Del(ctx, deliveryClaimKey(deliveryID)).Err()
}

// Compile-time assertion that *client satisfies the webhook.ClaimGuard interface.
var _ webhook.ClaimGuard = new(client)
