package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the state of one delivery's attempt lineage.
//
// Transitions: PENDING → IN_PROGRESS → {SUCCEEDED | RETRYING |
// MAX_RETRIES_EXCEEDED}; RETRYING → IN_PROGRESS on the next attempt. FAILED
// is the backstop for internal errors unrelated to the HTTP attempt itself.
// SUCCEEDED, MAX_RETRIES_EXCEEDED, and FAILED are terminal.
type DeliveryStatus string

const (
	DeliveryPending            DeliveryStatus = "PENDING"
	DeliveryInProgress         DeliveryStatus = "IN_PROGRESS"
	DeliverySucceeded          DeliveryStatus = "SUCCEEDED"
	DeliveryRetrying           DeliveryStatus = "RETRYING"
	DeliveryMaxRetriesExceeded DeliveryStatus = "MAX_RETRIES_EXCEEDED"
	DeliveryFailed             DeliveryStatus = "FAILED"
)

// Terminal reports whether the status is final. A delivery in a terminal
// status is immutable.
func (s DeliveryStatus) Terminal() bool {
	switch s {
	case DeliverySucceeded, DeliveryMaxRetriesExceeded, DeliveryFailed:
		return true
	}
	return false
}

var (
	// ErrDeliveryNotFound is returned when a delivery id does not exist.
	ErrDeliveryNotFound = errors.New("delivery not found")

	// ErrDeliveryAlreadyRecorded is returned by CreateDelivery when a
	// delivery for the same (subscription, event) pair already exists.
	ErrDeliveryAlreadyRecorded = errors.New("delivery already recorded")

	// ErrDeliveryFinalized is returned by UpdateDelivery when the stored row
	// is already in a terminal status. Terminal deliveries never regress.
	ErrDeliveryFinalized = errors.New("delivery already finalized")
)

// Delivery is one subscription's attempt lineage for one event.
// NextRetryAt is set if and only if Status is RETRYING; CompletedAt is set
// once the delivery reaches a terminal status.
type Delivery struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	EventID        uuid.UUID
	AttemptCount   int
	Status         DeliveryStatus
	LastStatusCode *int
	LastResponse   *string
	NextRetryAt    *time.Time
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// DeliveryStorage persists delivery records and serves the sweeper's due
// scan. The persistence layer is the single source of truth for delivery
// state; nothing is cached across operations.
type DeliveryStorage interface {
	// CreateDelivery stores a new delivery. Implementations enforce
	// uniqueness on (subscription, event) and return
	// ErrDeliveryAlreadyRecorded on conflict.
	CreateDelivery(ctx context.Context, delivery Delivery) error

	// LoadForAttempt loads the delivery joined with its subscription and
	// event. Returns ErrDeliveryNotFound when the id does not resolve.
	LoadForAttempt(ctx context.Context, deliveryID uuid.UUID) (Delivery, Subscription, Event, error)

	// UpdateDelivery overwrites the mutable columns of the delivery. The
	// update must not touch rows already in a terminal status; in that case
	// ErrDeliveryFinalized is returned and the stored record is unchanged.
	UpdateDelivery(ctx context.Context, delivery Delivery) error

	// ListDueDeliveries returns up to limit delivery ids that are PENDING,
	// or RETRYING with next_retry_at at or before now.
	ListDueDeliveries(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
