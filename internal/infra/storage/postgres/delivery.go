package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/luccasmb/chainhook/internal/webhook"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// terminalStatuses lists the delivery states that must never be mutated.
var terminalStatuses = []string{
	string(webhook.DeliverySucceeded),
	string(webhook.DeliveryMaxRetriesExceeded),
	string(webhook.DeliveryFailed),
}

// CreateDelivery implements webhook.DeliveryStorage. The unique index on
// (subscription_id, event_id) turns duplicate matches into
// ErrDeliveryAlreadyRecorded.
func (c *Client) CreateDelivery(ctx context.Context, delivery webhook.Delivery) error {
	const query = `
		INSERT INTO deliveries (id, subscription_id, event_id, attempt_count, status, last_status_code, last_response, next_retry_at, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := c.pool.Exec(ctx, query,
		delivery.ID, delivery.SubscriptionID, delivery.EventID,
		delivery.AttemptCount, string(delivery.Status),
		delivery.LastStatusCode, delivery.LastResponse, delivery.NextRetryAt,
		delivery.CreatedAt, delivery.CompletedAt,
	)
	if isUniqueViolation(err) {
		return webhook.ErrDeliveryAlreadyRecorded
	}
	return err
}

// LoadForAttempt implements webhook.DeliveryStorage.
func (c *Client) LoadForAttempt(ctx context.Context, deliveryID uuid.UUID) (webhook.Delivery, webhook.Subscription, webhook.Event, error) {
	const query = `
		SELECT d.id, d.subscription_id, d.event_id, d.attempt_count, d.status,
		       d.last_status_code, d.last_response, d.next_retry_at, d.created_at, d.completed_at,
		       s.id, s.name, s.url, s.secret, s.event_kinds, s.headers, s.active, s.created_by, s.created_at,
		       e.id, e.kind, e.payload, e.created_at
		FROM deliveries d
		JOIN webhook_subscriptions s ON s.id = d.subscription_id
		JOIN events e ON e.id = d.event_id
		WHERE d.id = $1`

	var (
		delivery webhook.Delivery
		sub      webhook.Subscription
		event    webhook.Event
		status   string
	)

	err := c.pool.QueryRow(ctx, query, deliveryID).Scan(
		&delivery.ID, &delivery.SubscriptionID, &delivery.EventID, &delivery.AttemptCount, &status,
		&delivery.LastStatusCode, &delivery.LastResponse, &delivery.NextRetryAt, &delivery.CreatedAt, &delivery.CompletedAt,
		&sub.ID, &sub.Name, &sub.URL, &sub.Secret, &sub.EventKinds, &sub.Headers, &sub.Active, &sub.CreatedBy, &sub.CreatedAt,
		&event.ID, &event.Kind, &event.Payload, &event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return webhook.Delivery{}, webhook.Subscription{}, webhook.Event{}, webhook.ErrDeliveryNotFound
	}
	if err != nil {
		return webhook.Delivery{}, webhook.Subscription{}, webhook.Event{}, err
	}

	delivery.Status = webhook.DeliveryStatus(status)
	return delivery, sub, event, nil
}

// UpdateDelivery implements webhook.DeliveryStorage. Rows already in a
// terminal status are left untouched; terminal deliveries never regress.
func (c *Client) UpdateDelivery(ctx context.Context, delivery webhook.Delivery) error {
	const query = `
		UPDATE deliveries
		SET attempt_count = $2, status = $3, last_status_code = $4, last_response = $5,
		    next_retry_at = $6, completed_at = $7
		WHERE id = $1 AND NOT (status = ANY($8))`

	tag, err := c.pool.Exec(ctx, query,
		delivery.ID, delivery.AttemptCount, string(delivery.Status),
		delivery.LastStatusCode, delivery.LastResponse,
		delivery.NextRetryAt, delivery.CompletedAt,
		terminalStatuses,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := c.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM deliveries WHERE id = $1)`, delivery.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return webhook.ErrDeliveryNotFound
		}
		return webhook.ErrDeliveryFinalized
	}

	return nil
}

// ListDueDeliveries implements webhook.DeliveryStorage.
func (c *Client) ListDueDeliveries(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const query = `
		SELECT id FROM deliveries
		WHERE status = $1 OR (status = $2 AND next_retry_at <= $3)
		ORDER BY created_at
		LIMIT $4`

	rows, err := c.pool.Query(ctx, query,
		string(webhook.DeliveryPending), string(webhook.DeliveryRetrying), now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ webhook.DeliveryStorage = (*Client)(nil)
