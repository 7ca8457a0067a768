package watchreg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luccasmb/chainhook/internal/classify"
	"github.com/luccasmb/chainhook/internal/pkg/validator"

	"github.com/google/uuid"
)

var (
	// ErrSubscriptionNotFound is returned when disabling a webhook
	// subscription that does not exist.
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")

	// ErrUnknownEventKind is returned when a subscription declares an event
	// kind outside the closed classification set.
	ErrUnknownEventKind = errors.New("unknown event kind")
)

// Subscription is a registered webhook endpoint as managed by the
// administrative surface.
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

// SubscriptionStorage persists webhook subscriptions.
type SubscriptionStorage interface {
	CreateSubscription(ctx context.Context, sub Subscription) error

	// DisableSubscription flips the active flag off. Returns
	// ErrSubscriptionNotFound for unknown ids.
	DisableSubscription(ctx context.Context, id uuid.UUID) error
}

// subscriptionInput is the validated subscription-creation request.
type subscriptionInput struct {
	Name       string   `validate:"required"`
	URL        string   `validate:"required,url"`
	EventKinds []string `validate:"required,min=1"`
	CreatedBy  string   `validate:"required"`
}

// buildSubscriptionInput validates the raw fields and checks every declared
// kind against the closed event-kind set.
func buildSubscriptionInput(name, url, createdBy string, kinds []string) (subscriptionInput, error) {
	in := subscriptionInput{
		Name:       name,
		URL:        url,
		EventKinds: kinds,
		CreatedBy:  createdBy,
	}
	if err := validator.Validate(in); err != nil {
		return in, err
	}

	for _, kind := range kinds {
		if !classify.EventKind(kind).Valid() {
			return in, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
		}
	}

	return in, nil
}
