package pipeline

import (
	"context"

	"github.com/luccasmb/chainhook/internal/chainscan"
	"github.com/luccasmb/chainhook/internal/classify"
	"github.com/luccasmb/chainhook/internal/webhook"
)

// transactionHandler adapts the classifier to the scanner's hand-off port,
// translating between the two packages' transaction representations.
type transactionHandler struct {
	classifier classify.Service
}

var _ chainscan.TransactionHandler = (*transactionHandler)(nil)

// NewTransactionHandler returns a chainscan.TransactionHandler that feeds
// discovered transactions into the classifier.
func NewTransactionHandler(classifier classify.Service) *transactionHandler {
	return &transactionHandler{classifier: classifier}
}

// HandleTransaction implements chainscan.TransactionHandler.
func (h *transactionHandler) HandleTransaction(ctx context.Context, entity chainscan.Entity, tx chainscan.Transaction) error {
	target := classify.Target{
		ID:      entity.ID,
		Kind:    classify.TargetAddress,
		Address: entity.Address,
	}
	if entity.Kind == chainscan.EntityKindContract {
		target.Kind = classify.TargetContract
	}

	_, err := h.classifier.Classify(ctx, target, toClassifyTransaction(tx))
	return err
}

func toClassifyTransaction(tx chainscan.Transaction) classify.Transaction {
	return classify.Transaction{
		Hash:        tx.Hash,
		BlockHeight: tx.BlockHeight,
		BlockTime:   tx.BlockTime,
		Inputs:      toClassifyEntries(tx.Inputs),
		Outputs:     toClassifyEntries(tx.Outputs),
		MintCount:   tx.MintCount,
		Metadata:    tx.Metadata,
	}
}

func toClassifyEntries(entries []chainscan.TxEntry) []classify.TxEntry {
	if entries == nil {
		return nil
	}

	converted := make([]classify.TxEntry, len(entries))
	for i, entry := range entries {
		amounts := make([]classify.Amount, len(entry.Amounts))
		for j, amount := range entry.Amounts {
			amounts[j] = classify.Amount{Unit: amount.Unit, Quantity: amount.Quantity}
		}
		converted[i] = classify.TxEntry{Address: entry.Address, Amounts: amounts}
	}
	return converted
}

// eventSink adapts the webhook engine to the classifier's sink port.
type eventSink struct {
	delivery webhook.Service
}

var _ classify.EventSink = (*eventSink)(nil)

// NewEventSink returns a classify.EventSink dispatching stored events into
// the webhook engine.
func NewEventSink(delivery webhook.Service) *eventSink {
	return &eventSink{delivery: delivery}
}

// DispatchEvent implements classify.EventSink.
func (s *eventSink) DispatchEvent(ctx context.Context, event classify.Event) error {
	return s.delivery.Dispatch(ctx, webhook.Event{
		ID:        event.ID,
		Kind:      string(event.Kind),
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	})
}
