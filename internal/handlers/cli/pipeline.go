package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/luccasmb/chainhook/internal/pipeline"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns the CLI command that runs the full pipeline:
// the change-detection scan loop and the delivery sweeper.
//
// Usage example:
//
//	chainhook start
//
// The process runs until it receives SIGINT or SIGTERM; in-flight delivery
// attempts are left to finish or time out on their own.
func startPipelineCommand(pipe pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the scan loop and the webhook delivery sweeper.",
		Usage:       "Runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := pipe.Start(ctx); err != nil {
				return err
			}
			defer pipe.Close()

			<-quit
			return nil
		},
	}
}
