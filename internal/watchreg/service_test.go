package watchreg

import (
	"context"
	"testing"

	"github.com/luccasmb/chainhook/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

type entityStorageFake struct {
	addresses   []Address
	contracts   []Contract
	deactivated []string
	createErr   error
}

func (f *entityStorageFake) CreateAddress(_ context.Context, address Address) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.addresses = append(f.addresses, address)
	return nil
}

func (f *entityStorageFake) CreateContract(_ context.Context, contract Contract) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.contracts = append(f.contracts, contract)
	return nil
}

func (f *entityStorageFake) DeactivateAddress(_ context.Context, address string) error {
	f.deactivated = append(f.deactivated, address)
	return nil
}

func (f *entityStorageFake) DeactivateContract(_ context.Context, address string) error {
	f.deactivated = append(f.deactivated, address)
	return nil
}

type subscriptionStorageFake struct {
	subs      []Subscription
	disabled  []uuid.UUID
	createErr error
}

func (f *subscriptionStorageFake) CreateSubscription(_ context.Context, sub Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.subs = append(f.subs, sub)
	return nil
}

func (f *subscriptionStorageFake) DisableSubscription(_ context.Context, id uuid.UUID) error {
	f.disabled = append(f.disabled, id)
	return nil
}

func TestService_RegisterAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an active record with identity fields", func(t *testing.T) {
		entities := new(entityStorageFake)
		svc := New(entities, new(subscriptionStorageFake))

		record, err := svc.RegisterAddress(ctx, "addr1qxy", "treasury", "ops@example.com")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, "addr1qxy", record.Address)
		assert.Equal(t, "treasury", record.Name)
		assert.True(t, record.Active)
		assert.Equal(t, "ops@example.com", record.CreatedBy)
		assert.False(t, record.CreatedAt.IsZero())

		require.Len(t, entities.addresses, 1)
		assert.Equal(t, record, entities.addresses[0])
	})

	t.Run("name is optional", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.RegisterAddress(ctx, "addr1qxy", "", "ops@example.com")
		assert.NoError(t, err)
	})

	t.Run("empty address is rejected", func(t *testing.T) {
		entities := new(entityStorageFake)
		svc := New(entities, new(subscriptionStorageFake))

		_, err := svc.RegisterAddress(ctx, "", "treasury", "ops@example.com")
		require.Error(t, err)
		assert.Empty(t, entities.addresses)
	})

	t.Run("missing creator is rejected", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.RegisterAddress(ctx, "addr1qxy", "treasury", "")
		assert.Error(t, err)
	})

	t.Run("storage conflict propagates", func(t *testing.T) {
		entities := &entityStorageFake{createErr: ErrEntityAlreadyRegistered}
		svc := New(entities, new(subscriptionStorageFake))

		_, err := svc.RegisterAddress(ctx, "addr1qxy", "treasury", "ops@example.com")
		assert.ErrorIs(t, err, ErrEntityAlreadyRegistered)
	})
}

func TestService_RegisterContract(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an active contract record", func(t *testing.T) {
		entities := new(entityStorageFake)
		svc := New(entities, new(subscriptionStorageFake))

		record, err := svc.RegisterContract(ctx, "addr1script", "dex-pool", "ops@example.com")
		require.NoError(t, err)

		assert.True(t, record.Active)
		require.Len(t, entities.contracts, 1)
		assert.Equal(t, record, entities.contracts[0])
	})

	t.Run("empty address is rejected", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.RegisterContract(ctx, "", "dex-pool", "ops@example.com")
		assert.Error(t, err)
	})
}

func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()

	entities := new(entityStorageFake)
	svc := New(entities, new(subscriptionStorageFake))

	require.NoError(t, svc.DeactivateAddress(ctx, "addr1qxy"))
	require.NoError(t, svc.DeactivateContract(ctx, "addr1script"))

	assert.Equal(t, []string{"addr1qxy", "addr1script"}, entities.deactivated)
}

func TestService_CreateSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an active subscription", func(t *testing.T) {
		subscriptions := new(subscriptionStorageFake)
		svc := New(new(entityStorageFake), subscriptions)

		headers := map[string]string{"Authorization": "Bearer tok"}
		record, err := svc.CreateSubscription(ctx, "alerts", "https://example.com/hook", "whsec", "ops@example.com",
			[]string{"ADA_RECEIVED", "NFT_RECEIVED"}, headers)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.True(t, record.Active)
		assert.Equal(t, "whsec", record.Secret)
		assert.Equal(t, headers, record.Headers)
		require.Len(t, subscriptions.subs, 1)
		assert.Equal(t, record, subscriptions.subs[0])
	})

	t.Run("invalid url is rejected", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.CreateSubscription(ctx, "alerts", "not a url", "", "ops@example.com",
			[]string{"ADA_RECEIVED"}, nil)
		assert.Error(t, err)
	})

	t.Run("empty kind set is rejected", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.CreateSubscription(ctx, "alerts", "https://example.com/hook", "", "ops@example.com",
			nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown event kind is rejected", func(t *testing.T) {
		svc := New(new(entityStorageFake), new(subscriptionStorageFake))

		_, err := svc.CreateSubscription(ctx, "alerts", "https://example.com/hook", "", "ops@example.com",
			[]string{"ADA_RECEIVED", "BLOCK_MINTED"}, nil)
		assert.ErrorIs(t, err, ErrUnknownEventKind)
	})
}

func TestService_DisableSubscription(t *testing.T) {
	subscriptions := new(subscriptionStorageFake)
	svc := New(new(entityStorageFake), subscriptions)

	id := uuid.Must(uuid.NewV7())
	require.NoError(t, svc.DisableSubscription(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, subscriptions.disabled)
}
