// Package classify maps a (watched entity, transaction) pair to zero or more
// typed events, persists them, and hands each stored event to the delivery
// side without ever blocking on it.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/luccasmb/chainhook/internal/pkg/logger"

	"github.com/google/uuid"
)

// Service derives and stores events for discovered transactions.
type Service interface {
	// Classify derives every applicable event kind for the transaction
	// relative to the target, stores one event per kind, and dispatches each
	// stored event to the sink asynchronously. Storage failures for a single
	// event are logged and skipped; the remaining kinds still go through.
	//
	// It returns the events that were newly stored. Duplicate events
	// (ErrEventAlreadyRecorded) are silently dropped.
	Classify(ctx context.Context, target Target, tx Transaction) ([]Event, error)
}

type service struct {
	storage EventStorage
	sink    EventSink
}

var _ Service = (*service)(nil)

// New creates a classifier writing to storage and forwarding stored events
// to sink.
func New(storage EventStorage, sink EventSink) *service {
	return &service{
		storage: storage,
		sink:    sink,
	}
}

// deriveKinds computes the applicable event kinds for the transaction. The
// kinds are independent: a transaction can be both a send and a receive for
// the same address, and token events always accompany, never replace, the
// plain transaction events.
func deriveKinds(target Target, tx Transaction) []EventKind {
	if target.Kind == TargetContract {
		kinds := []EventKind{EventContractExecuted}
		if tx.MintCount > 0 {
			kinds = append(kinds, EventTokenMinted)
		}
		return kinds
	}

	var kinds []EventKind

	if touchesAddress(tx.Outputs, target.Address) {
		kinds = append(kinds, EventTransactionReceived)

		received := amountsAt(tx.Outputs, target.Address)
		if sumNative(received) > 0 {
			kinds = append(kinds, EventADAReceived)
		}
		if tokens := tokenAmounts(received); len(tokens) > 0 {
			kinds = append(kinds, EventTokenReceived)
			if containsSingleQuantity(tokens) {
				kinds = append(kinds, EventNFTReceived)
			}
		}
	}

	if touchesAddress(tx.Inputs, target.Address) {
		kinds = append(kinds, EventTransactionSent)

		sent := amountsAt(tx.Inputs, target.Address)
		if sumNative(sent) > 0 {
			kinds = append(kinds, EventADASent)
		}
		if tokens := tokenAmounts(sent); len(tokens) > 0 {
			kinds = append(kinds, EventTokenSent)
			if containsSingleQuantity(tokens) {
				kinds = append(kinds, EventNFTSent)
			}
		}
	}

	if metadataPresent(tx.Metadata) {
		kinds = append(kinds, EventMetadataAdded)
	}

	return kinds
}

// eventPayload is the opaque structured payload stored with every event and
// later forwarded verbatim to subscribers.
type eventPayload struct {
	Transaction Transaction    `json:"transaction"`
	Watched     watchedPayload `json:"watched"`
}

type watchedPayload struct {
	Kind    TargetKind `json:"kind"`
	ID      uuid.UUID  `json:"id"`
	Address string     `json:"address"`
}

// Classify implements Service.
func (s *service) Classify(ctx context.Context, target Target, tx Transaction) ([]Event, error) {
	kinds := deriveKinds(target, tx)
	if len(kinds) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(eventPayload{
		Transaction: tx,
		Watched: watchedPayload{
			Kind:    target.Kind,
			ID:      target.ID,
			Address: target.Address,
		},
	})
	if err != nil {
		return nil, err
	}

	stored := make([]Event, 0, len(kinds))
	for _, kind := range kinds {
		event := Event{
			ID:          uuid.Must(uuid.NewV7()),
			TxHash:      tx.Hash,
			BlockHeight: tx.BlockHeight,
			BlockTime:   tx.BlockTime,
			Kind:        kind,
			Payload:     payload,
			CreatedAt:   time.Now().UTC(),
		}
		switch target.Kind {
		case TargetContract:
			id := target.ID
			event.ContractID = &id
		default:
			id := target.ID
			event.AddressID = &id
		}

		if err := s.storage.CreateEvent(ctx, event); err != nil {
			if errors.Is(err, ErrEventAlreadyRecorded) {
				logger.Debug(ctx, "duplicate event skipped",
					"event.kind", kind,
					"tx.hash", tx.Hash,
				)
				continue
			}

			logger.Error(ctx, "storing classified event",
				"event.kind", kind,
				"tx.hash", tx.Hash,
				"error", err,
			)
			continue
		}

		stored = append(stored, event)
		s.dispatchAsync(ctx, event)
	}

	return stored, nil
}

// dispatchAsync hands the event to the sink in its own goroutine so the
// classification loop never waits on delivery.
func (s *service) dispatchAsync(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.sink.DispatchEvent(ctx, event); err != nil {
			logger.Error(ctx, "dispatching event to sink",
				"event.id", event.ID,
				"event.kind", event.Kind,
				"error", err,
			)
		}
	}()
}
