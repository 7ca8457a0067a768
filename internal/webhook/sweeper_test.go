package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Sweeper(t *testing.T) {
	t.Run("picks up pending and due-for-retry deliveries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		storage := newDeliveryStorageFake()
		event := testEvent("ADA_RECEIVED")
		sub := testSubscription(server.URL, "ADA_RECEIVED")

		pendingID := seedPendingDelivery(storage, sub, event)

		due := time.Now().UTC().Add(-time.Minute)
		retrying := Delivery{
			ID:             uuid.Must(uuid.NewV7()),
			SubscriptionID: sub.ID,
			EventID:        uuid.Must(uuid.NewV7()),
			AttemptCount:   1,
			Status:         DeliveryRetrying,
			NextRetryAt:    &due,
			CreatedAt:      time.Now().UTC(),
		}
		storage.seed(retrying, sub, event)

		notYet := time.Now().UTC().Add(time.Hour)
		waiting := Delivery{
			ID:             uuid.Must(uuid.NewV7()),
			SubscriptionID: sub.ID,
			EventID:        uuid.Must(uuid.NewV7()),
			AttemptCount:   1,
			Status:         DeliveryRetrying,
			NextRetryAt:    &notYet,
			CreatedAt:      time.Now().UTC(),
		}
		storage.seed(waiting, sub, event)

		svc := New(new(subscriptionStorageFake), storage, new(processedEventsFake),
			WithSweepInterval(20*time.Millisecond),
		)

		require.NoError(t, svc.Start(context.Background()))
		defer svc.Close()

		require.Eventually(t, func() bool {
			return storage.get(pendingID).Status == DeliverySucceeded &&
				storage.get(retrying.ID).Status == DeliverySucceeded
		}, 3*time.Second, 20*time.Millisecond)

		assert.Equal(t, DeliveryRetrying, storage.get(waiting.ID).Status)
	})

	t.Run("close does not interrupt an in-flight swept attempt", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})

		var once sync.Once
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			once.Do(func() { close(started) })
			<-release
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		storage := &contextCheckingDeliveryStorage{deliveryStorageFake: newDeliveryStorageFake()}
		event := testEvent("ADA_RECEIVED")
		sub := testSubscription(server.URL, "ADA_RECEIVED")
		deliveryID := seedPendingDelivery(storage.deliveryStorageFake, sub, event)

		svc := New(new(subscriptionStorageFake), storage, new(processedEventsFake),
			WithSweepInterval(20*time.Millisecond),
		)

		require.NoError(t, svc.Start(context.Background()))

		<-started
		svc.Close()
		close(release)

		// The attempt must run to completion and record the subscriber's
		// real answer: a retryable 500, never a canceled write turned into
		// a terminal FAILED.
		require.Eventually(t, func() bool {
			return storage.get(deliveryID).Status == DeliveryRetrying
		}, 3*time.Second, 20*time.Millisecond)

		got := storage.get(deliveryID)
		require.NotNil(t, got.LastStatusCode)
		assert.Equal(t, http.StatusInternalServerError, *got.LastStatusCode)
		assert.NotContains(t, storage.statuses(deliveryID), DeliveryFailed)
	})

	t.Run("second start fails", func(t *testing.T) {
		svc := New(new(subscriptionStorageFake), newDeliveryStorageFake(), new(processedEventsFake),
			WithSweepInterval(time.Hour),
		)

		require.NoError(t, svc.Start(context.Background()))
		defer svc.Close()

		assert.ErrorIs(t, svc.Start(context.Background()), ErrServiceAlreadyStarted)
	})

	t.Run("close without start is safe and allows a later start", func(t *testing.T) {
		svc := New(new(subscriptionStorageFake), newDeliveryStorageFake(), new(processedEventsFake),
			WithSweepInterval(time.Hour),
		)

		svc.Close()
		require.NoError(t, svc.Start(context.Background()))
		svc.Close()
		require.NoError(t, svc.Start(context.Background()))
		svc.Close()
	})

	t.Run("sweep batch caps how many deliveries one cycle picks up", func(t *testing.T) {
		storage := newDeliveryStorageFake()
		event := testEvent("ADA_RECEIVED")
		sub := testSubscription("http://unreachable.invalid", "ADA_RECEIVED")

		for i := 0; i < 5; i++ {
			seedPendingDelivery(storage, sub, Event{
				ID:        uuid.Must(uuid.NewV7()),
				Kind:      event.Kind,
				Payload:   event.Payload,
				CreatedAt: event.CreatedAt,
			})
		}

		svc := New(new(subscriptionStorageFake), storage, new(processedEventsFake), WithSweepBatch(2))

		ids, err := storage.ListDueDeliveries(context.Background(), svc.now().UTC(), svc.sweepBatch)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})
}

// contextCheckingDeliveryStorage fails every storage call whose context was
// already canceled, the way a real database driver would.
type contextCheckingDeliveryStorage struct {
	*deliveryStorageFake
}

func (s *contextCheckingDeliveryStorage) LoadForAttempt(ctx context.Context, deliveryID uuid.UUID) (Delivery, Subscription, Event, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, Subscription{}, Event{}, err
	}
	return s.deliveryStorageFake.LoadForAttempt(ctx, deliveryID)
}

func (s *contextCheckingDeliveryStorage) UpdateDelivery(ctx context.Context, delivery Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deliveryStorageFake.UpdateDelivery(ctx, delivery)
}
