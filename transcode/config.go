package transcode

import (
	"time"

	"github.com/kbukum/voiceingest/validation"
)

// Config configures the Engine.
type Config struct {
	// Timeout bounds one transcoder run.
	Timeout time.Duration `mapstructure:"timeout"`
	// GracePeriod is the delay between SIGTERM and SIGKILL on timeout.
	GracePeriod time.Duration `mapstructure:"grace_period"`
	// MaxConcurrent caps simultaneous transcoder processes.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
	// QueueTimeout is how long a request waits for a free transcoder slot.
	QueueTimeout time.Duration `mapstructure:"queue_timeout"`
	// ExcerptBytes caps stderr/stdout excerpts reported on failure.
	ExcerptBytes int `mapstructure:"excerpt_bytes"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 2 * time.Second
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
	if c.QueueTimeout <= 0 {
		c.QueueTimeout = 5 * time.Second
	}
	if c.ExcerptBytes <= 0 {
		c.ExcerptBytes = 2048
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Struct("transcode", c)
}
