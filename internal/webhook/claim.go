package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAttemptInProgress signals that another process currently holds the
// claim for a delivery. The caller skips the attempt; the sweeper will
// re-admit the delivery if the holder crashes and the claim expires.
var ErrAttemptInProgress = errors.New("delivery attempt already in progress")

// ClaimGuard serializes attempts for the same delivery across processes. A
// single-process deployment can run without one; the in-process keyed mutex
// already serializes attempts locally.
type ClaimGuard interface {
	// ClaimDelivery acquires a time-bound exclusive claim on the delivery.
	// Returns ErrAttemptInProgress when another holder has it.
	ClaimDelivery(ctx context.Context, deliveryID uuid.UUID, ttl time.Duration) error

	// ReleaseDelivery drops the claim once the attempt's outcome has been
	// persisted.
	ReleaseDelivery(ctx context.Context, deliveryID uuid.UUID) error
}

// nopClaimGuard always grants the claim. Used when no distributed guard is
// configured.
type nopClaimGuard struct{}

var _ ClaimGuard = (*nopClaimGuard)(nil)

func (nopClaimGuard) ClaimDelivery(ctx context.Context, deliveryID uuid.UUID, ttl time.Duration) error {
	return nil
}

func (nopClaimGuard) ReleaseDelivery(ctx context.Context, deliveryID uuid.UUID) error {
	return nil
}
