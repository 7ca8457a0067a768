// Package webhook matches classified events to registered subscriptions and
// delivers them over HTTP, driving a per-delivery retry state machine with
// exponential backoff. A periodic sweeper re-admits deliveries that are due
// for retry or were abandoned before completion, giving the engine a second,
// persistent entry path independent of the immediate in-process trigger.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luccasmb/chainhook/internal/pkg/logger"
	transporthttp "github.com/luccasmb/chainhook/internal/pkg/transport/http"
	"github.com/luccasmb/chainhook/internal/pkg/x/keymutex"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

const (
	defaultMaxAttempts    = 5
	defaultBaseDelay      = 30 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultSweepInterval  = 5 * time.Second
	defaultSweepBatch     = 100
	defaultClaimTTL       = 1 * time.Minute

	// maxRetryDelay caps the exponential backoff; beyond it the shift
	// could overflow time.Duration and schedule the retry in the past.
	maxRetryDelay = 24 * time.Hour
)

// Service is the delivery engine: event dispatch, attempt execution, and the
// sweeper lifecycle.
type Service interface {
	// Start launches the sweeper loop, which periodically picks up PENDING
	// and due-for-retry deliveries and attempts them. Returns
	// ErrServiceAlreadyStarted if already running.
	Start(ctx context.Context) error

	// Close stops the sweeper. In-flight attempts finish or time out on
	// their own; they are not interrupted.
	Close()

	// Dispatch finds every active subscription matching the event's kind,
	// creates a PENDING delivery per match, and fires an immediate attempt
	// for each in the background. It then marks the event processed,
	// whether or not any subscription matched.
	Dispatch(ctx context.Context, event Event) error

	// Attempt executes one delivery attempt, driving the state machine:
	// IN_PROGRESS, then SUCCEEDED, RETRYING with backoff, or
	// MAX_RETRIES_EXCEEDED. Unexpected internal errors transition the
	// delivery to FAILED. Concurrent attempts for the same delivery id are
	// collapsed: late arrivals return immediately.
	Attempt(ctx context.Context, deliveryID uuid.UUID) error
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	subscriptions SubscriptionStorage
	deliveries    DeliveryStorage
	events        EventStorage
	claimGuard    ClaimGuard
	httpClient    *retryablehttp.Client

	maxAttempts    int
	baseDelay      time.Duration
	requestTimeout time.Duration
	sweepInterval  time.Duration
	sweepBatch     int
	claimTTL       time.Duration

	attemptLocks *keymutex.KeyedMutex
	now          func() time.Time
}

var _ Service = (*service)(nil)

type config struct {
	claimGuard     ClaimGuard
	httpClient     *retryablehttp.Client
	maxAttempts    int
	baseDelay      time.Duration
	requestTimeout time.Duration
	sweepInterval  time.Duration
	sweepBatch     int
}

// Option configures the delivery engine.
type Option func(*config)

// WithMaxAttempts caps how many attempts a delivery gets before it is marked
// MAX_RETRIES_EXCEEDED. Default: 5.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		c.maxAttempts = n
	}
}

// WithBaseDelay sets the backoff base: attempt k schedules its retry after
// baseDelay * 2^(k-1). Default: 30s.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.baseDelay = d
	}
}

// WithRequestTimeout bounds each outbound HTTP attempt. Default: 10s.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) {
		c.requestTimeout = d
	}
}

// WithSweepInterval sets how often the sweeper scans for due deliveries.
// Default: 5s.
func WithSweepInterval(d time.Duration) Option {
	return func(c *config) {
		c.sweepInterval = d
	}
}

// WithSweepBatch caps how many deliveries one sweep picks up. Default: 100.
func WithSweepBatch(n int) Option {
	return func(c *config) {
		c.sweepBatch = n
	}
}

// WithClaimGuard installs a cross-process claim guard (e.g. redis-backed)
// serializing attempts per delivery across instances. Without one, only the
// in-process keyed mutex serializes attempts.
func WithClaimGuard(g ClaimGuard) Option {
	return func(c *config) {
		c.claimGuard = g
	}
}

// WithHTTPClient replaces the outbound HTTP client. Transport-level retries
// are disabled on it regardless; the state machine owns retry policy.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// New creates the delivery engine over the given storage ports.
func New(subscriptions SubscriptionStorage, deliveries DeliveryStorage, events EventStorage, opts ...Option) *service {
	cfg := config{
		claimGuard:     nopClaimGuard{},
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		requestTimeout: defaultRequestTimeout,
		sweepInterval:  defaultSweepInterval,
		sweepBatch:     defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = transporthttp.NewClient(transporthttp.WithTimeout(cfg.requestTimeout))
	}

	return &service{
		subscriptions:  subscriptions,
		deliveries:     deliveries,
		events:         events,
		claimGuard:     cfg.claimGuard,
		httpClient:     disableTransportRetries(cfg.httpClient),
		maxAttempts:    cfg.maxAttempts,
		baseDelay:      cfg.baseDelay,
		requestTimeout: cfg.requestTimeout,
		sweepInterval:  cfg.sweepInterval,
		sweepBatch:     cfg.sweepBatch,
		claimTTL:       defaultClaimTTL,
		attemptLocks:   keymutex.New(),
		now:            time.Now,
	}
}

// Dispatch implements Service.
func (s *service) Dispatch(ctx context.Context, event Event) error {
	subs, err := s.subscriptions.ListActiveByKind(ctx, event.Kind)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		delivery := Delivery{
			ID:             uuid.Must(uuid.NewV7()),
			SubscriptionID: sub.ID,
			EventID:        event.ID,
			Status:         DeliveryPending,
			CreatedAt:      s.now().UTC(),
		}

		if err := s.deliveries.CreateDelivery(ctx, delivery); err != nil {
			if errors.Is(err, ErrDeliveryAlreadyRecorded) {
				logger.Debug(ctx, "delivery already exists for subscription",
					"event.id", event.ID,
					"subscription.id", sub.ID,
				)
				continue
			}

			logger.Error(ctx, "creating delivery record",
				"event.id", event.ID,
				"subscription.id", sub.ID,
				"error", err,
			)
			continue
		}

		attemptCtx := context.WithoutCancel(ctx)
		go func(id uuid.UUID) {
			_ = s.Attempt(attemptCtx, id)
		}(delivery.ID)
	}

	if err := s.events.MarkEventProcessed(ctx, event.ID); err != nil {
		logger.Warn(ctx, "marking event as processed",
			"event.id", event.ID,
			"error", err,
		)
	}

	return nil
}

// Attempt implements Service.
func (s *service) Attempt(ctx context.Context, deliveryID uuid.UUID) error {
	release, ok := s.attemptLocks.TryLock(deliveryID.String())
	if !ok {
		logger.Debug(ctx, "delivery attempt already running locally", "delivery.id", deliveryID)
		return nil
	}
	defer release()

	if err := s.claimGuard.ClaimDelivery(ctx, deliveryID, s.claimTTL); err != nil {
		if errors.Is(err, ErrAttemptInProgress) {
			logger.Debug(ctx, "delivery claimed by another process", "delivery.id", deliveryID)
			return nil
		}
		return err
	}
	defer func() {
		if err := s.claimGuard.ReleaseDelivery(context.WithoutCancel(ctx), deliveryID); err != nil {
			logger.Warn(ctx, "releasing delivery claim", "delivery.id", deliveryID, "error", err)
		}
	}()

	delivery, sub, event, err := s.deliveries.LoadForAttempt(ctx, deliveryID)
	if err != nil {
		// Nothing loaded, so there is no record to transition.
		logger.Error(ctx, "loading delivery for attempt", "delivery.id", deliveryID, "error", err)
		return err
	}

	if delivery.Status.Terminal() {
		logger.Debug(ctx, "delivery already finalized", "delivery.id", deliveryID, "delivery.status", delivery.Status)
		return nil
	}

	if err := s.runAttempt(ctx, &delivery, sub, event); err != nil {
		s.markFailed(ctx, &delivery, err)
		return err
	}

	return nil
}

// runAttempt performs the IN_PROGRESS transition, the HTTP call, and the
// outcome transition. Any returned error is an internal failure that the
// caller converts into the FAILED backstop state.
func (s *service) runAttempt(ctx context.Context, delivery *Delivery, sub Subscription, event Event) error {
	delivery.Status = DeliveryInProgress
	delivery.AttemptCount++
	delivery.NextRetryAt = nil

	if err := s.deliveries.UpdateDelivery(ctx, *delivery); err != nil {
		if errors.Is(err, ErrDeliveryFinalized) {
			// Lost the race against a concurrent finalizer: leave it alone.
			return nil
		}
		return fmt.Errorf("transitioning delivery to in-progress: %w", err)
	}

	statusCode, responseBody, reqErr := s.send(ctx, *delivery, sub, event)

	now := s.now().UTC()

	switch {
	case reqErr == nil && statusCode >= 200 && statusCode < 300:
		delivery.Status = DeliverySucceeded
		delivery.LastStatusCode = &statusCode
		body := truncate(responseBody)
		delivery.LastResponse = &body
		delivery.NextRetryAt = nil
		delivery.CompletedAt = &now

	default:
		if reqErr != nil {
			errText := truncate(reqErr.Error())
			delivery.LastStatusCode = nil
			delivery.LastResponse = &errText
		} else {
			// A response arrived but with a non-success status: still a
			// failed attempt.
			delivery.LastStatusCode = &statusCode
			body := truncate(responseBody)
			delivery.LastResponse = &body
		}

		if delivery.AttemptCount < s.maxAttempts {
			next := now.Add(retryDelay(s.baseDelay, delivery.AttemptCount))
			delivery.Status = DeliveryRetrying
			delivery.NextRetryAt = &next
		} else {
			delivery.Status = DeliveryMaxRetriesExceeded
			delivery.NextRetryAt = nil
			delivery.CompletedAt = &now
		}
	}

	if err := s.deliveries.UpdateDelivery(ctx, *delivery); err != nil {
		if errors.Is(err, ErrDeliveryFinalized) {
			return nil
		}
		return fmt.Errorf("persisting delivery attempt outcome: %w", err)
	}

	logger.Info(ctx, "delivery attempt finished",
		"delivery.id", delivery.ID,
		"delivery.status", delivery.Status,
		"delivery.attempts", delivery.AttemptCount,
	)

	return nil
}

// retryDelay returns base doubled per prior attempt, capped at
// maxRetryDelay so arbitrarily large attempt limits stay well-formed.
func retryDelay(base time.Duration, attemptCount int) time.Duration {
	if shift := attemptCount - 1; shift < 63 && base <= maxRetryDelay>>shift {
		return base << shift
	}
	return maxRetryDelay
}

// markFailed is the backstop transition keeping deliveries out of a stuck
// IN_PROGRESS state when something unrelated to the HTTP attempt broke.
func (s *service) markFailed(ctx context.Context, delivery *Delivery, cause error) {
	now := s.now().UTC()
	errText := truncate(cause.Error())

	delivery.Status = DeliveryFailed
	delivery.LastResponse = &errText
	delivery.NextRetryAt = nil
	delivery.CompletedAt = &now

	if err := s.deliveries.UpdateDelivery(context.WithoutCancel(ctx), *delivery); err != nil && !errors.Is(err, ErrDeliveryFinalized) {
		logger.Error(ctx, "marking delivery as failed",
			"delivery.id", delivery.ID,
			"error", err,
		)
	}
}
