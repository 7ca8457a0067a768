package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Subscription is a registered webhook endpoint with the set of event kinds
// it wants delivered. Secret, when non-empty, is used to HMAC-sign outgoing
// payloads. Headers are attached to every delivery request and may override
// the engine's own headers.
type Subscription struct {
	ID         uuid.UUID
	Name       string
	URL        string
	Secret     string
	EventKinds []string
	Headers    map[string]string
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
}

// SubscriptionStorage is the read side the matcher needs: which active
// subscriptions declare interest in a given event kind.
type SubscriptionStorage interface {
	ListActiveByKind(ctx context.Context, kind string) ([]Subscription, error)
}

// Event is the delivery side's view of a classified event: just what is
// needed to build the outbound payload.
type Event struct {
	ID        uuid.UUID
	Kind      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// EventStorage lets the engine flag an event as processed once its initial
// dispatch ran. Processed marks classification-complete, not
// delivery-complete: deliveries may still be retrying afterwards.
type EventStorage interface {
	MarkEventProcessed(ctx context.Context, eventID uuid.UUID) error
}
