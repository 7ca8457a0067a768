package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/luccasmb/chainhook/internal/watchreg"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// webhookCommand groups the subscription management subcommands.
func webhookCommand(reg watchreg.Service) *cli.Command {
	return &cli.Command{
		Name:        "webhook",
		Description: "Manage webhook subscriptions.",
		Usage:       "chainhook webhook [add|disable] [flags]",
		Commands: []*cli.Command{
			addWebhookCommand(reg),
			disableWebhookCommand(reg),
		},
	}
}

// addWebhookCommand registers a webhook endpoint for a set of event kinds.
//
// Usage example:
//
//	chainhook webhook add --name payments --url https://example.com/hook \
//	  --events ADA_RECEIVED,ADA_SENT --secret s3cret \
//	  --header "X-Env: production"
func addWebhookCommand(reg watchreg.Service) *cli.Command {
	return &cli.Command{
		Name:        "add",
		Description: "Register a webhook endpoint subscribed to one or more event kinds.",
		Usage:       "Creates a webhook subscription. Events is a comma-separated kind list.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Display name for the subscription",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Target URL deliveries are POSTed to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "events",
				Usage:    "Comma-separated event kinds to subscribe to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "secret",
				Usage: "Optional HMAC signing secret",
			},
			&cli.StringSliceFlag{
				Name:  "header",
				Usage: "Custom header in 'Name: value' form; repeatable",
			},
			&cli.StringFlag{
				Name:  "created-by",
				Usage: "Identifier of the registering caller",
				Value: "cli",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			kinds := splitTrimmed(c.String("events"))
			headers, err := parseHeaders(c.StringSlice("header"))
			if err != nil {
				return err
			}

			sub, err := reg.CreateSubscription(ctx,
				c.String("name"),
				c.String("url"),
				c.String("secret"),
				c.String("created-by"),
				kinds,
				headers,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Writer, "webhook %s registered (%s)\n", sub.Name, sub.ID)
			return nil
		},
	}
}

// disableWebhookCommand deactivates a subscription by id.
//
// Usage example:
//
//	chainhook webhook disable --id 0198c6b2-...
func disableWebhookCommand(reg watchreg.Service) *cli.Command {
	return &cli.Command{
		Name:        "disable",
		Description: "Stop deliveries to a webhook subscription.",
		Usage:       "Disables a subscription by id. Existing retry lineages still run out.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Subscription id",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := uuid.Parse(c.String("id"))
			if err != nil {
				return fmt.Errorf("invalid subscription id: %w", err)
			}

			return reg.DisableSubscription(ctx, id)
		},
	}
}

// splitTrimmed splits a comma-separated list and trims each element,
// dropping empties.
func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseHeaders parses repeated 'Name: value' flags into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, value, found := strings.Cut(entry, ":")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", entry)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}
