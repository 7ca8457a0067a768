package postgres

import (
	"context"

	"github.com/luccasmb/chainhook/internal/watchreg"
	"github.com/luccasmb/chainhook/internal/webhook"

	"github.com/google/uuid"
)

// CreateSubscription implements watchreg.SubscriptionStorage.
func (c *Client) CreateSubscription(ctx context.Context, sub watchreg.Subscription) error {
	const query = `
		INSERT INTO webhook_subscriptions (id, name, url, secret, event_kinds, headers, active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := c.pool.Exec(ctx, query,
		sub.ID, sub.Name, sub.URL, sub.Secret, sub.EventKinds, sub.Headers,
		sub.Active, sub.CreatedBy, sub.CreatedAt,
	)
	return err
}

// DisableSubscription implements watchreg.SubscriptionStorage.
func (c *Client) DisableSubscription(ctx context.Context, id uuid.UUID) error {
	tag, err := c.pool.Exec(ctx, `UPDATE webhook_subscriptions SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return watchreg.ErrSubscriptionNotFound
	}
	return nil
}

// ListActiveByKind implements webhook.SubscriptionStorage.
func (c *Client) ListActiveByKind(ctx context.Context, kind string) ([]webhook.Subscription, error) {
	const query = `
		SELECT id, name, url, secret, event_kinds, headers, active, created_by, created_at
		FROM webhook_subscriptions
		WHERE active AND $1 = ANY(event_kinds)`

	rows, err := c.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []webhook.Subscription
	for rows.Next() {
		var sub webhook.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.Name, &sub.URL, &sub.Secret, &sub.EventKinds,
			&sub.Headers, &sub.Active, &sub.CreatedBy, &sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

var (
	_ watchreg.SubscriptionStorage = (*Client)(nil)
	_ webhook.SubscriptionStorage  = (*Client)(nil)
)
