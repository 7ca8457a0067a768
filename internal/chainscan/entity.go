package chainscan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityKind distinguishes the two variants of watched entity.
type EntityKind string

const (
	EntityKindAddress  EntityKind = "address"
	EntityKindContract EntityKind = "contract"
)

// Entity is the scanner's read view of a watched address or contract.
// It carries just enough to poll the chain and to attribute discovered
// transactions back to the registered record.
type Entity struct {
	ID      uuid.UUID
	Kind    EntityKind
	Address string
}

// Key returns the cache namespace prefix for this entity. Addresses and
// contracts watching the same on-chain address must not share dedup state.
func (e Entity) Key() string {
	return string(e.Kind) + ":" + e.ID.String()
}

// EntityStorage lists the entities that should be polled and records when
// each one was last checked.
type EntityStorage interface {
	// ListActiveEntities returns every active watched address and contract.
	// The scanner polls each of them once per cycle.
	ListActiveEntities(ctx context.Context) ([]Entity, error)

	// TouchEntity records that the entity was polled at the given time.
	TouchEntity(ctx context.Context, entity Entity, at time.Time) error
}

// TransactionHandler receives each newly discovered transaction exactly once
// per (entity, transaction) pair, subject to dedup cache resets. Implementations
// must therefore tolerate the occasional duplicate hand-off.
type TransactionHandler interface {
	HandleTransaction(ctx context.Context, entity Entity, tx Transaction) error
}
