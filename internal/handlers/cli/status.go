package cli

import (
	"context"
	"fmt"

	"github.com/luccasmb/chainhook/internal/infra/upstream/blockfrost"

	"github.com/urfave/cli/v3"
)

// AddressInfoFetcher is the slice of the upstream client the status command
// needs.
type AddressInfoFetcher interface {
	GetAddressInfo(ctx context.Context, address string) (blockfrost.AddressInfo, error)
}

// addressStatusCommand prints the upstream balance snapshot of an address.
//
// Usage example:
//
//	chainhook status --address addr1q9x...
func addressStatusCommand(info AddressInfoFetcher) *cli.Command {
	return &cli.Command{
		Name:        "status",
		Description: "Show the current balance breakdown of an address as reported upstream.",
		Usage:       "Fetches and prints the address balance snapshot.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "On-chain address to inspect",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			snapshot, err := info.GetAddressInfo(ctx, c.String("address"))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Writer, "address: %s\n", snapshot.Address)
			for _, amount := range snapshot.Amounts {
				fmt.Fprintf(c.Writer, "  %s: %s\n", amount.Unit, amount.Quantity)
			}
			return nil
		},
	}
}
