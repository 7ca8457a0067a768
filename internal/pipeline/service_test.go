package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/luccasmb/chainhook/internal/chainscan"
	"github.com/luccasmb/chainhook/internal/classify"
	"github.com/luccasmb/chainhook/internal/pkg/logger"
	"github.com/luccasmb/chainhook/internal/webhook"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

type lifecycleFake struct {
	startErr error
	started  int
	closed   int
}

func (f *lifecycleFake) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *lifecycleFake) Close() { f.closed++ }

type deliveryFake struct {
	lifecycleFake
	dispatched []webhook.Event
}

func (f *deliveryFake) Dispatch(_ context.Context, event webhook.Event) error {
	f.dispatched = append(f.dispatched, event)
	return nil
}

func (f *deliveryFake) Attempt(context.Context, uuid.UUID) error { return nil }

type classifierFake struct {
	gotTarget classify.Target
	gotTx     classify.Transaction
	err       error
}

func (f *classifierFake) Classify(_ context.Context, target classify.Target, tx classify.Transaction) ([]classify.Event, error) {
	f.gotTarget = target
	f.gotTx = tx
	return nil, f.err
}

func TestService_StartClose(t *testing.T) {
	t.Run("starts delivery before the scanner", func(t *testing.T) {
		scanner, delivery := new(lifecycleFake), new(deliveryFake)

		svc := New(scanner, delivery)
		require.NoError(t, svc.Start(context.Background()))

		assert.Equal(t, 1, scanner.started)
		assert.Equal(t, 1, delivery.started)

		svc.Close()
		assert.Equal(t, 1, scanner.closed)
		assert.Equal(t, 1, delivery.closed)
	})

	t.Run("second start fails", func(t *testing.T) {
		svc := New(new(lifecycleFake), new(deliveryFake))

		require.NoError(t, svc.Start(context.Background()))
		assert.ErrorIs(t, svc.Start(context.Background()), ErrServiceAlreadyStarted)
	})

	t.Run("scanner start failure rolls back the delivery engine", func(t *testing.T) {
		scanner := &lifecycleFake{startErr: errors.New("no upstream")}
		delivery := new(deliveryFake)

		svc := New(scanner, delivery)
		require.Error(t, svc.Start(context.Background()))

		assert.Equal(t, 1, delivery.started)
		assert.Equal(t, 1, delivery.closed)
	})

	t.Run("delivery start failure never starts the scanner", func(t *testing.T) {
		scanner := new(lifecycleFake)
		delivery := new(deliveryFake)
		delivery.startErr = errors.New("no storage")

		svc := New(scanner, delivery)
		require.Error(t, svc.Start(context.Background()))
		assert.Zero(t, scanner.started)
	})
}

func TestTransactionHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("address entity maps to an address target", func(t *testing.T) {
		classifier := new(classifierFake)
		handler := NewTransactionHandler(classifier)

		entity := chainscan.Entity{
			ID:      uuid.Must(uuid.NewV7()),
			Kind:    chainscan.EntityKindAddress,
			Address: "addr1qxy",
		}
		tx := chainscan.Transaction{
			Hash: "tx-1",
			Outputs: []chainscan.TxEntry{{
				Address: "addr1qxy",
				Amounts: []chainscan.Amount{{Unit: "lovelace", Quantity: "1000000"}},
			}},
			MintCount: 3,
		}

		require.NoError(t, handler.HandleTransaction(ctx, entity, tx))

		assert.Equal(t, classify.TargetAddress, classifier.gotTarget.Kind)
		assert.Equal(t, entity.ID, classifier.gotTarget.ID)
		assert.Equal(t, entity.Address, classifier.gotTarget.Address)

		assert.Equal(t, "tx-1", classifier.gotTx.Hash)
		assert.Equal(t, 3, classifier.gotTx.MintCount)
		require.Len(t, classifier.gotTx.Outputs, 1)
		assert.Equal(t, classify.Amount{Unit: "lovelace", Quantity: "1000000"}, classifier.gotTx.Outputs[0].Amounts[0])
	})

	t.Run("contract entity maps to a contract target", func(t *testing.T) {
		classifier := new(classifierFake)
		handler := NewTransactionHandler(classifier)

		entity := chainscan.Entity{
			ID:      uuid.Must(uuid.NewV7()),
			Kind:    chainscan.EntityKindContract,
			Address: "addr1script",
		}

		require.NoError(t, handler.HandleTransaction(ctx, entity, chainscan.Transaction{Hash: "tx-1"}))
		assert.Equal(t, classify.TargetContract, classifier.gotTarget.Kind)
	})

	t.Run("classifier error propagates", func(t *testing.T) {
		classifier := &classifierFake{err: errors.New("storage down")}
		handler := NewTransactionHandler(classifier)

		err := handler.HandleTransaction(ctx, chainscan.Entity{Kind: chainscan.EntityKindAddress}, chainscan.Transaction{})
		assert.Error(t, err)
	})
}

func TestEventSink(t *testing.T) {
	delivery := new(deliveryFake)
	sink := NewEventSink(delivery)

	event := classify.Event{
		ID:      uuid.Must(uuid.NewV7()),
		Kind:    classify.EventADAReceived,
		Payload: []byte(`{"transaction":{"hash":"tx-1"}}`),
	}

	require.NoError(t, sink.DispatchEvent(context.Background(), event))

	require.Len(t, delivery.dispatched, 1)
	dispatched := delivery.dispatched[0]
	assert.Equal(t, event.ID, dispatched.ID)
	assert.Equal(t, string(classify.EventADAReceived), dispatched.Kind)
	assert.Equal(t, []byte(event.Payload), []byte(dispatched.Payload))
}
