// Package watchreg is the administrative surface: registering and
// deactivating watched addresses, contracts, and webhook subscriptions.
// Callers are assumed to be pre-authenticated; CreatedBy records who
// registered the record, but monitoring is independent of caller identity
// thereafter.
package watchreg

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes the registration operations consumed by the CLI.
type Service interface {
	// RegisterAddress starts watching a wallet address.
	RegisterAddress(ctx context.Context, address, name, createdBy string) (Address, error)

	// RegisterContract starts watching a contract address.
	RegisterContract(ctx context.Context, address, name, createdBy string) (Contract, error)

	// DeactivateAddress stops watching a wallet address. The record is
	// soft-deactivated, never deleted.
	DeactivateAddress(ctx context.Context, address string) error

	// DeactivateContract stops watching a contract address.
	DeactivateContract(ctx context.Context, address string) error

	// CreateSubscription registers a webhook endpoint for a non-empty set
	// of event kinds.
	CreateSubscription(ctx context.Context, name, url, secret, createdBy string, kinds []string, headers map[string]string) (Subscription, error)

	// DisableSubscription stops deliveries to the subscription. Pending
	// retry lineages already created keep running to their terminal state.
	DisableSubscription(ctx context.Context, id uuid.UUID) error
}

type service struct {
	entities      EntityStorage
	subscriptions SubscriptionStorage
}

var _ Service = (*service)(nil)

// New creates the registration service over the given storage ports.
func New(entities EntityStorage, subscriptions SubscriptionStorage) *service {
	return &service{
		entities:      entities,
		subscriptions: subscriptions,
	}
}

// RegisterAddress implements Service.
func (s *service) RegisterAddress(ctx context.Context, address, name, createdBy string) (Address, error) {
	in, err := buildEntityInput(address, name, createdBy)
	if err != nil {
		return Address{}, err
	}

	record := Address{
		ID:        uuid.Must(uuid.NewV7()),
		Address:   in.Address,
		Name:      in.Name,
		Active:    true,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	return record, s.entities.CreateAddress(ctx, record)
}

// RegisterContract implements Service.
func (s *service) RegisterContract(ctx context.Context, address, name, createdBy string) (Contract, error) {
	in, err := buildEntityInput(address, name, createdBy)
	if err != nil {
		return Contract{}, err
	}

	record := Contract{
		ID:        uuid.Must(uuid.NewV7()),
		Address:   in.Address,
		Name:      in.Name,
		Active:    true,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	return record, s.entities.CreateContract(ctx, record)
}

// DeactivateAddress implements Service.
func (s *service) DeactivateAddress(ctx context.Context, address string) error {
	return s.entities.DeactivateAddress(ctx, address)
}

// DeactivateContract implements Service.
func (s *service) DeactivateContract(ctx context.Context, address string) error {
	return s.entities.DeactivateContract(ctx, address)
}

// CreateSubscription implements Service.
func (s *service) CreateSubscription(ctx context.Context, name, url, secret, createdBy string, kinds []string, headers map[string]string) (Subscription, error) {
	in, err := buildSubscriptionInput(name, url, createdBy, kinds)
	if err != nil {
		return Subscription{}, err
	}

	record := Subscription{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       in.Name,
		URL:        in.URL,
		Secret:     secret,
		EventKinds: in.EventKinds,
		Headers:    headers,
		Active:     true,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}

	return record, s.subscriptions.CreateSubscription(ctx, record)
}

// DisableSubscription implements Service.
func (s *service) DisableSubscription(ctx context.Context, id uuid.UUID) error {
	return s.subscriptions.DisableSubscription(ctx, id)
}
