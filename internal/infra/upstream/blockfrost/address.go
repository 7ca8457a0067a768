package blockfrost

import (
	"context"

	"github.com/luccasmb/chainhook/internal/chainscan"
)

// AddressInfo is the balance snapshot of one address as reported by the
// provider.
type AddressInfo struct {
	Address string             `json:"address"`
	Amounts []chainscan.Amount `json:"amount"`
}

// GetAddressInfo fetches the current balance breakdown of an address.
// Returns ErrNotFound for addresses the provider has never seen.
func (c *Client) GetAddressInfo(ctx context.Context, address string) (AddressInfo, error) {
	var payload struct {
		Address string       `json:"address"`
		Amount  []utxoAmount `json:"amount"`
	}
	if err := c.get(ctx, "/addresses/"+escape(address), &payload); err != nil {
		return AddressInfo{}, err
	}

	info := AddressInfo{
		Address: payload.Address,
		Amounts: make([]chainscan.Amount, len(payload.Amount)),
	}
	for i, amount := range payload.Amount {
		info.Amounts[i] = chainscan.Amount{Unit: amount.Unit, Quantity: amount.Quantity}
	}
	return info, nil
}
