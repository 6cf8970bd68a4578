package transcription

import (
	"time"

	"github.com/kbukum/voiceingest/resilience"
	"github.com/kbukum/voiceingest/validation"
)

// Config selects and configures the speech-to-text provider.
type Config struct {
	// Provider names the registered backend to use.
	Provider string `mapstructure:"provider" validate:"required"`
	// Language is the default expected language. Empty lets the provider detect it.
	Language string `mapstructure:"language"`
	// Timeout bounds a single provider call on top of the HTTP client timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// Breaker sheds load while the provider keeps failing.
	Breaker resilience.CircuitBreakerConfig `mapstructure:"breaker"`
	// Providers holds per-backend options keyed by provider name.
	Providers map[string]map[string]any `mapstructure:"providers"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Timeout <= 0 {
		c.Timeout = 90 * time.Second
	}
	if c.Breaker.Name == "" {
		c.Breaker.Name = "transcription"
	}
	c.Breaker.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Struct("transcription", c)
}

// ProviderConfig returns the options of the selected provider.
func (c *Config) ProviderConfig() map[string]any {
	if opts, ok := c.Providers[c.Provider]; ok {
		return opts
	}
	return map[string]any{}
}
