package watchreg

import (
	"context"
	"errors"
	"time"

	"github.com/luccasmb/chainhook/internal/pkg/validator"

	"github.com/google/uuid"
)

var (
	// ErrEntityNotFound is returned when a deactivation targets an address
	// or contract that was never registered.
	ErrEntityNotFound = errors.New("watched entity not found")

	// ErrEntityAlreadyRegistered is returned when the on-chain address is
	// already registered; addresses are unique per variant.
	ErrEntityAlreadyRegistered = errors.New("entity already registered")
)

// Address is a watched wallet address. Records are soft-deactivated, never
// physically deleted, so event history keeps resolving its references.
type Address struct {
	ID            uuid.UUID
	Address       string
	Name          string
	Active        bool
	CreatedBy     string
	LastCheckedAt *time.Time
	CreatedAt     time.Time
}

// Contract is a watched smart-contract address.
type Contract struct {
	ID            uuid.UUID
	Address       string
	Name          string
	Active        bool
	CreatedBy     string
	LastCheckedAt *time.Time
	CreatedAt     time.Time
}

// EntityStorage persists watched addresses and contracts.
type EntityStorage interface {
	// CreateAddress stores a new watched address. Returns
	// ErrEntityAlreadyRegistered when the on-chain address is taken.
	CreateAddress(ctx context.Context, address Address) error

	// CreateContract stores a new watched contract. Returns
	// ErrEntityAlreadyRegistered when the on-chain address is taken.
	CreateContract(ctx context.Context, contract Contract) error

	// DeactivateAddress flips the active flag off. Returns
	// ErrEntityNotFound when no such address is registered.
	DeactivateAddress(ctx context.Context, address string) error

	// DeactivateContract flips the active flag off. Returns
	// ErrEntityNotFound when no such contract is registered.
	DeactivateContract(ctx context.Context, address string) error
}

// entityInput is the validated registration request.
type entityInput struct {
	Address   string `validate:"required"`
	Name      string
	CreatedBy string `validate:"required"`
}

// buildEntityInput validates the raw registration fields.
func buildEntityInput(address, name, createdBy string) (entityInput, error) {
	in := entityInput{
		Address:   address,
		Name:      name,
		CreatedBy: createdBy,
	}

	return in, validator.Validate(in)
}
