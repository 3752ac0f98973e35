package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

// EngineConfig tunes the quoting engine: cache lifetimes, oracle evaluation
// limits and the persistence backend.
type EngineConfig struct {
	// QuoteTTL is how long an issued quote stays redeemable (in seconds).
	// Default: 30
	QuoteTTL int

	// CacheTTL is how long a priced route is served from cache (in seconds).
	// Default: 3
	CacheTTL int

	// SweepInterval is how often expired quotes are purged (in seconds).
	// Default: 60
	SweepInterval int

	// EvalTimeout bounds a single oracle evaluation batch (in seconds).
	// Default: 5
	EvalTimeout int

	// MaxConcurrency caps in-flight oracle calls per request. 0 = unbounded.
	// Default: 8
	MaxConcurrency int

	// DBPath is the path to the BoltDB file for quote persistence.
	// Default: "./data/gateway.db"
	DBPath string

	// PersistenceEnabled controls whether quotes and request logs are
	// persisted to disk. Default: true
	PersistenceEnabled bool

	// PriceFeedURL is the base URL of the USD price source used for the
	// price impact estimate. Empty disables USD impact (reported as "0").
	PriceFeedURL string

	// PriceFeedTimeout bounds a single price feed call (in seconds).
	// Default: 2
	PriceFeedTimeout int
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	c.QuoteTTL = common.GetEnvOrDefaultInt("QUOTE_TTL_SECONDS", 30)
	c.CacheTTL = common.GetEnvOrDefaultInt("QUOTE_CACHE_TTL_SECONDS", 3)
	c.SweepInterval = common.GetEnvOrDefaultInt("QUOTE_SWEEP_INTERVAL_SECONDS", 60)
	c.EvalTimeout = common.GetEnvOrDefaultInt("EVAL_TIMEOUT_SECONDS", 5)
	c.MaxConcurrency = common.GetEnvOrDefaultInt("EVAL_MAX_CONCURRENCY", 8)
	c.DBPath = common.GetEnvOrDefault("GATEWAY_DB_PATH", "./data/gateway.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("GATEWAY_PERSISTENCE_ENABLED", "true") == "true"
	c.PriceFeedURL = common.GetEnvOrDefault("PRICE_FEED_URL", "")
	c.PriceFeedTimeout = common.GetEnvOrDefaultInt("PRICE_FEED_TIMEOUT_SECONDS", 2)
	return nil
}

func (c *EngineConfig) Validate() error {
	if c.QuoteTTL <= 0 || c.CacheTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("invalid engine config: TTLs must be positive")
	}
	if c.EvalTimeout <= 0 {
		return errors.New("invalid engine config: EVAL_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
