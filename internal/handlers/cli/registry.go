package cli

import (
	"context"
	"fmt"

	"github.com/luccasmb/chainhook/internal/watchreg"

	"github.com/urfave/cli/v3"
)

// watchEntityCommand registers a wallet address or contract for monitoring.
//
// Usage example:
//
//	chainhook watch --address addr1q9x... --name treasury
//	chainhook watch --address addr1w8z... --contract --name dex-pool
func watchEntityCommand(reg watchreg.Service) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Register an address or contract to be monitored for on-chain activity.",
		Usage:       "Registers a watched entity. Use --contract for contract addresses.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "On-chain address to start watching",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Optional human-readable label",
			},
			&cli.BoolFlag{
				Name:  "contract",
				Usage: "Register the address as a contract instead of a wallet",
			},
			&cli.StringFlag{
				Name:  "created-by",
				Usage: "Identifier of the registering caller",
				Value: "cli",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				address   = c.String("address")
				name      = c.String("name")
				createdBy = c.String("created-by")
			)

			if c.Bool("contract") {
				contract, err := reg.RegisterContract(ctx, address, name, createdBy)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Writer, "watching contract %s (%s)\n", contract.Address, contract.ID)
				return nil
			}

			record, err := reg.RegisterAddress(ctx, address, name, createdBy)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Writer, "watching address %s (%s)\n", record.Address, record.ID)
			return nil
		},
	}
}

// unwatchEntityCommand deactivates a watched address or contract. The record
// is kept for event history; only the active flag is flipped.
//
// Usage example:
//
//	chainhook unwatch --address addr1q9x...
func unwatchEntityCommand(reg watchreg.Service) *cli.Command {
	return &cli.Command{
		Name:        "unwatch",
		Description: "Deactivate a watched address or contract.",
		Usage:       "Stops monitoring an entity. Use --contract for contract addresses.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "On-chain address to stop watching",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "contract",
				Usage: "The address is a contract",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			address := c.String("address")

			if c.Bool("contract") {
				return reg.DeactivateContract(ctx, address)
			}
			return reg.DeactivateAddress(ctx, address)
		},
	}
}
