// Package config loads the process configuration from the environment. All
// variables share the CHAINHOOK prefix; every tunable has a default, so the
// only required settings are the upstream credentials and the database DSN.
// A missing required value is fatal at startup, never at runtime.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to every environment variable name.
const envPrefix = "chainhook"

// Config is the full process configuration.
type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	Upstream UpstreamConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Scan     ScanConfig
	Delivery DeliveryConfig
}

// UpstreamConfig points at the blockchain-data provider.
type UpstreamConfig struct {
	BaseURL   string        `envconfig:"BASE_URL" required:"true"`
	ProjectID string        `envconfig:"PROJECT_ID" required:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"15s"`
	RetryMax  int           `envconfig:"RETRY_MAX" default:"2"`
}

// PostgresConfig points at the relational store.
type PostgresConfig struct {
	DSN string `envconfig:"DSN" required:"true"`
}

// RedisConfig points at the optional delivery claim guard. An empty Addr
// disables the guard; single-process deployments do not need it.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:""`
	Username string `envconfig:"USERNAME" default:""`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

// ScanConfig tunes the change-detection loop.
type ScanConfig struct {
	Interval      time.Duration `envconfig:"INTERVAL" default:"30s"`
	PageSize      int           `envconfig:"PAGE_SIZE" default:"20"`
	CacheCapacity int           `envconfig:"CACHE_CAPACITY" default:"1000"`
}

// DeliveryConfig tunes the webhook delivery engine and its sweeper.
type DeliveryConfig struct {
	MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"5"`
	BaseDelay      time.Duration `envconfig:"BASE_DELAY" default:"30s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5s"`
	SweepBatch     int           `envconfig:"SWEEP_BATCH" default:"100"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process(envPrefix, &cfg)
	return cfg, err
}
