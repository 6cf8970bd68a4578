package provider

import (
	"context"
	"time"
)

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable reports whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from configuration.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// String reads a string option from a factory config map.
func String(cfg map[string]any, key string) string {
	v, _ := cfg[key].(string)
	return v
}

// Duration reads a duration option given either as time.Duration or as a
// string such as "90s". It returns def when the key is absent or invalid.
func Duration(cfg map[string]any, key string, def time.Duration) time.Duration {
	switch v := cfg[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
