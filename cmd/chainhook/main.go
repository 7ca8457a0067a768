package main

import (
	"context"
	"os"

	"github.com/luccasmb/chainhook/internal/chainscan"
	"github.com/luccasmb/chainhook/internal/classify"
	"github.com/luccasmb/chainhook/internal/config"
	"github.com/luccasmb/chainhook/internal/handlers/cli"
	"github.com/luccasmb/chainhook/internal/infra/storage/postgres"
	redisstorage "github.com/luccasmb/chainhook/internal/infra/storage/redis"
	"github.com/luccasmb/chainhook/internal/infra/upstream/blockfrost"
	"github.com/luccasmb/chainhook/internal/pipeline"
	"github.com/luccasmb/chainhook/internal/pkg/logger"
	"github.com/luccasmb/chainhook/internal/pkg/resilience/retry"
	"github.com/luccasmb/chainhook/internal/pkg/telemetry"
	transporthttp "github.com/luccasmb/chainhook/internal/pkg/transport/http"
	"github.com/luccasmb/chainhook/internal/watchreg"
	"github.com/luccasmb/chainhook/internal/webhook"
)

const serviceName = "chainhook"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("loading configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			os.Stderr.WriteString("initializing telemetry: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("initializing logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := postgres.NewClient(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal(ctx, "connecting to postgres", "error", err)
	}
	defer db.Close()

	upstream := blockfrost.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.ProjectID, transporthttp.NewClient(
		transporthttp.WithTimeout(cfg.Upstream.Timeout),
		transporthttp.WithRetryMax(cfg.Upstream.RetryMax),
	))

	deliveryOpts := []webhook.Option{
		webhook.WithMaxAttempts(cfg.Delivery.MaxAttempts),
		webhook.WithBaseDelay(cfg.Delivery.BaseDelay),
		webhook.WithRequestTimeout(cfg.Delivery.RequestTimeout),
		webhook.WithSweepInterval(cfg.Delivery.SweepInterval),
		webhook.WithSweepBatch(cfg.Delivery.SweepBatch),
	}

	if cfg.Redis.Addr != "" {
		guard, err := redisstorage.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal(ctx, "connecting to redis", "error", err)
		}
		defer guard.Close()

		deliveryOpts = append(deliveryOpts, webhook.WithClaimGuard(guard))
	}

	delivery := webhook.New(db, db, db, deliveryOpts...)
	classifier := classify.New(db, pipeline.NewEventSink(delivery))

	scanner := chainscan.New(upstream, db, pipeline.NewTransactionHandler(classifier),
		chainscan.NewSeenCache(cfg.Scan.CacheCapacity),
		chainscan.WithInterval(cfg.Scan.Interval),
		chainscan.WithPageSize(cfg.Scan.PageSize),
		chainscan.WithRetry(retry.New(retry.WithAttempts(3))),
	)

	var (
		pipe = pipeline.New(scanner, delivery)
		reg  = watchreg.New(db, db)
	)

	if err := cli.Run(ctx, reg, pipe, upstream); err != nil {
		logger.Fatal(ctx, "running chainhook", "error", err)
	}
}
