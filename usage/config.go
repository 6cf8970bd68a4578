package usage

import (
	"time"

	"github.com/kbukum/voiceingest/validation"
)

// Backends.
const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// Config selects and tunes the ledger store.
type Config struct {
	// Backend is memory, database or redis.
	Backend string `mapstructure:"backend" validate:"oneof=memory database redis"`

	// AttemptTTL bounds how long redis remembers an idempotency key.
	AttemptTTL time.Duration `mapstructure:"attempt_ttl" validate:"gte=0"`

	// CounterTTL bounds how long redis keeps a day counter.
	CounterTTL time.Duration `mapstructure:"counter_ttl" validate:"gte=0"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.AttemptTTL <= 0 {
		c.AttemptTTL = 72 * time.Hour
	}
	if c.CounterTTL <= 0 {
		c.CounterTTL = 48 * time.Hour
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	v := validation.New("usage")
	v.Merge("", validation.Struct("", c))
	v.Custom(c.AttemptTTL >= 24*time.Hour, "attempt_ttl", "must cover at least one day")
	return v.Err()
}
