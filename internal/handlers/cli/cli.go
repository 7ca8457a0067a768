package cli

import (
	"context"
	"os"

	"github.com/luccasmb/chainhook/internal/pipeline"
	"github.com/luccasmb/chainhook/internal/watchreg"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the chainhook CLI application.
//
// Commands:
//
//   - `start`: runs the watch-classify-deliver pipeline until interrupted.
//   - `watch` / `unwatch`: register or deactivate a watched address or contract.
//   - `webhook add` / `webhook disable`: manage webhook subscriptions.
//   - `status`: show the current upstream balance snapshot of an address.
func Run(ctx context.Context, reg watchreg.Service, pipe pipeline.Service, info AddressInfoFetcher) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "chainhook",
		Description:           "Watches blockchain addresses and contracts and delivers classified events to registered webhooks.",
		Usage:                 "chainhook [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(pipe),
			watchEntityCommand(reg),
			unwatchEntityCommand(reg),
			webhookCommand(reg),
			addressStatusCommand(info),
		},
	}

	return app.Run(ctx, os.Args)
}
