package toolchain

import (
	"fmt"
	"time"
)

// Config configures a Resolver.
type Config struct {
	// Path is an explicit executable path. Tried first when set.
	Path string `mapstructure:"path"`
	// Name is looked up on PATH.
	Name string `mapstructure:"name"`
	// BundledPath is the fallback shipped alongside the service.
	BundledPath string `mapstructure:"bundled_path"`
	// VersionFlag is passed to each candidate during probing.
	VersionFlag string `mapstructure:"version_flag"`
	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	// WaitTimeout bounds how long a caller waits for an in-flight resolution.
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "ffmpeg"
	}
	if c.VersionFlag == "" {
		c.VersionFlag = "-version"
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 10 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Path == "" && c.Name == "" && c.BundledPath == "" {
		return fmt.Errorf("toolchain: at least one of path, name or bundled_path is required")
	}
	if c.WaitTimeout < c.ProbeTimeout {
		return fmt.Errorf("toolchain: wait_timeout (%s) must not be shorter than probe_timeout (%s)", c.WaitTimeout, c.ProbeTimeout)
	}
	return nil
}
