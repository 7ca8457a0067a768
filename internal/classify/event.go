package classify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventKind is the closed set of classifications an event can carry.
type EventKind string

const (
	EventTransactionReceived EventKind = "TRANSACTION_RECEIVED"
	EventTransactionSent     EventKind = "TRANSACTION_SENT"
	EventADAReceived         EventKind = "ADA_RECEIVED"
	EventADASent             EventKind = "ADA_SENT"
	EventTokenReceived       EventKind = "TOKEN_RECEIVED"
	EventTokenSent           EventKind = "TOKEN_SENT"
	EventNFTReceived         EventKind = "NFT_RECEIVED"
	EventNFTSent             EventKind = "NFT_SENT"
	EventTokenMinted         EventKind = "TOKEN_MINTED"
	EventContractExecuted    EventKind = "CONTRACT_EXECUTED"
	EventMetadataAdded       EventKind = "METADATA_ADDED"
)

// Kinds lists every valid event kind.
var Kinds = []EventKind{
	EventTransactionReceived,
	EventTransactionSent,
	EventADAReceived,
	EventADASent,
	EventTokenReceived,
	EventTokenSent,
	EventNFTReceived,
	EventNFTSent,
	EventTokenMinted,
	EventContractExecuted,
	EventMetadataAdded,
}

// Valid reports whether k is part of the closed event-kind set.
func (k EventKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ErrEventAlreadyRecorded is returned by EventStorage.CreateEvent when an
// event with the same (entity, transaction, kind) triple already exists. The
// classifier treats it as a benign duplicate: the dedup cache was reset or
// the process restarted, and the original event already made it downstream.
var ErrEventAlreadyRecorded = errors.New("event already recorded")

// Event is one classified occurrence derived from a transaction relative to
// a watched entity. Exactly one of AddressID and ContractID is set. Events
// are immutable after creation except for the Processed flag, which the
// delivery engine flips once the event has been dispatched to subscribers.
type Event struct {
	ID          uuid.UUID
	TxHash      string
	BlockHeight *int64
	BlockTime   *time.Time
	Kind        EventKind
	Payload     json.RawMessage
	AddressID   *uuid.UUID
	ContractID  *uuid.UUID
	Processed   bool
	CreatedAt   time.Time
}

// EventStorage persists classified events.
type EventStorage interface {
	// CreateEvent stores the event. Implementations enforce uniqueness on
	// the (entity reference, tx hash, kind) triple and return
	// ErrEventAlreadyRecorded on conflict, so re-classification after a
	// cache reset stays idempotent.
	CreateEvent(ctx context.Context, event Event) error
}

// EventSink receives every newly stored event for downstream matching and
// delivery. The classifier invokes it asynchronously; a slow or failing sink
// never stalls classification.
type EventSink interface {
	DispatchEvent(ctx context.Context, event Event) error
}
