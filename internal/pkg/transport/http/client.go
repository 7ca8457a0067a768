// Package http builds outbound HTTP clients on top of hashicorp's
// retryablehttp, with functional options for the timeout and retry knobs.
// Call sites that must not retry at the transport level (webhook delivery)
// disable the retry loop on the returned client themselves.
package http

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 5 * time.Second
	defaultRetryMax     = 2
)

type config struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
}

// Option configures the client being built.
type Option func(*config)

// WithTimeout bounds each individual HTTP request. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the smallest backoff between transport retries.
// Default: 1s.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the largest backoff between transport retries.
// Default: 5s.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax caps how many times a failed request is retried at the
// transport level. Default: 2.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// NewClient builds a retryablehttp.Client with the given options applied
// over the defaults. The client's own logger is silenced; request logging
// is the caller's concern.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      defaultTimeout,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
		retryMax:     defaultRetryMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax
	return client
}
