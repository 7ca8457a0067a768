// Package retry wraps avast/retry-go behind a small interface so services
// can take a retry policy as a dependency and tests can substitute it. The
// delay strategy is exponential backoff and is not configurable; attempts,
// base delay, and delay cap are.
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = uint(3)
	defaultDelay    = 1 * time.Second
	defaultMaxDelay = 5 * time.Second
)

// Retry executes an operation with automatic re-attempts on failure.
type Retry interface {
	// Execute runs operation until it succeeds, the attempt budget runs
	// out, or ctx is done. The operation must be safe to call more than
	// once. On exhaustion the last error is returned.
	Execute(ctx context.Context, operation func() error) error
}

type config struct {
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

// Option configures the policy built by New.
type Option func(*config)

// WithAttempts sets the total attempt budget, the first call included.
// Default: 3.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the delay before the first re-attempt; backoff doubles it
// from there. Default: 1s.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the backoff growth. Default: 5s.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New builds a retry policy from the options applied over the defaults.
func New(opts ...Option) Retry {
	cfg := config{
		attempts: defaultAttempts,
		delay:    defaultDelay,
		maxDelay: defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{cfg: cfg}
}

// Execute implements Retry.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	return retry.Do(operation,
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}
