// Package chainscan implements the polling change-detection loop. On a fixed
// interval it lists every active watched entity, fetches the most recent
// transactions for each from the upstream provider, filters out transactions
// already handled via a bounded dedup cache, and hands each new one to the
// configured TransactionHandler.
package chainscan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/luccasmb/chainhook/internal/pkg/logger"
	"github.com/luccasmb/chainhook/internal/pkg/resilience/retry"
	"github.com/luccasmb/chainhook/internal/pkg/x/keymutex"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

const (
	defaultScanInterval = 30 * time.Second
	defaultPageSize     = 20
)

// Service drives the periodic scan loop.
type Service interface {
	// Start launches the background scan loop. The first cycle runs
	// immediately; subsequent cycles run on the configured interval until
	// ctx is canceled or Close is called.
	//
	// Returns ErrServiceAlreadyStarted if the service is already running.
	Start(ctx context.Context) error

	// Close stops the scan loop. Safe to call even if never started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	chain    ChainClient
	entities EntityStorage
	handler  TransactionHandler
	seen     *SeenCache

	retry       retry.Retry
	interval    time.Duration
	pageSize    int
	entityLocks *keymutex.KeyedMutex
}

var _ Service = (*service)(nil)

type config struct {
	retry    retry.Retry
	interval time.Duration
	pageSize int
}

// Option configures the scanner.
type Option func(*config)

// WithInterval sets the delay between scan cycles. Default: 30s.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// WithPageSize sets how many recent transactions are listed per entity each
// cycle. Default: 20.
func WithPageSize(n int) Option {
	return func(c *config) {
		c.pageSize = n
	}
}

// WithRetry wraps transaction-detail fetches in the given retry policy, so a
// single transient upstream failure does not postpone a transaction to the
// next cycle.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// New creates a scanner over the given upstream client, entity listing, and
// per-transaction handler. The SeenCache is owned by the caller and injected,
// so independent scanner instances never share dedup state.
func New(chain ChainClient, entities EntityStorage, handler TransactionHandler, seen *SeenCache, opts ...Option) *service {
	cfg := config{
		interval: defaultScanInterval,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		chain:       chain,
		entities:    entities,
		handler:     handler,
		seen:        seen,
		retry:       cfg.retry,
		interval:    cfg.interval,
		pageSize:    cfg.pageSize,
		entityLocks: keymutex.New(),
	}
}

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.closeFunc = func() { cancel() }

	go s.run(ctx)

	s.isStarted = true
	return nil
}

// Close implements Service.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// run executes scan cycles until ctx is canceled.
func (s *service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle scans every active entity once. A failure scanning one entity is
// logged and never aborts the cycle for the others.
func (s *service) runCycle(ctx context.Context) {
	entities, err := s.entities.ListActiveEntities(ctx)
	if err != nil {
		logger.Error(ctx, "listing active watched entities", "error", err)
		return
	}

	for _, entity := range entities {
		if ctx.Err() != nil {
			return
		}

		release, ok := s.entityLocks.TryLock(entity.Key())
		if !ok {
			// A previous cycle is still scanning this entity.
			logger.Debug(ctx, "entity scan still in progress, skipping",
				"entity.kind", entity.Kind,
				"entity.address", entity.Address,
			)
			continue
		}

		func() {
			defer release()

			if err := s.scanEntity(ctx, entity); err != nil {
				logger.Error(ctx, "entity scan failed",
					"entity.kind", entity.Kind,
					"entity.address", entity.Address,
					"error", err,
				)
			}
		}()
	}
}

// scanEntity fetches the most recent transactions for one entity, updates its
// last-checked timestamp, and hands every not-yet-seen transaction to the
// handler.
func (s *service) scanEntity(ctx context.Context, entity Entity) error {
	summaries, err := s.chain.ListTransactions(ctx, entity.Address, s.pageSize, 1)
	if err != nil {
		return err
	}

	if err := s.entities.TouchEntity(ctx, entity, time.Now().UTC()); err != nil {
		logger.Warn(ctx, "updating entity last-checked timestamp",
			"entity.address", entity.Address,
			"error", err,
		)
	}

	for _, summary := range summaries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !s.seen.MarkSeen(entity, summary.Hash) {
			continue
		}

		tx, err := s.fetchTransaction(ctx, summary.Hash)
		if err != nil {
			// Drop the key so the next cycle retries the fetch.
			s.seen.Forget(entity, summary.Hash)
			logger.Warn(ctx, "fetching transaction detail",
				"entity.address", entity.Address,
				"tx.hash", summary.Hash,
				"error", err,
			)
			continue
		}

		if err := s.handler.HandleTransaction(ctx, entity, tx); err != nil {
			logger.Error(ctx, "handling discovered transaction",
				"entity.address", entity.Address,
				"tx.hash", tx.Hash,
				"error", err,
			)
		}
	}

	return nil
}

// fetchTransaction loads transaction detail, going through the configured
// retry policy when one is set.
func (s *service) fetchTransaction(ctx context.Context, hash string) (Transaction, error) {
	if s.retry == nil {
		return s.chain.GetTransaction(ctx, hash)
	}

	var tx Transaction
	err := s.retry.Execute(ctx, func() error {
		var fetchErr error
		tx, fetchErr = s.chain.GetTransaction(ctx, hash)
		return fetchErr
	})
	return tx, err
}
