package toolchain

import (
	"context"

	"github.com/kbukum/voiceingest/component"
)

var _ component.HealthChecker = (*Resolver)(nil)

// Name implements component.HealthChecker.
func (r *Resolver) Name() string { return "toolchain" }

// Health reports the resolution without waiting for it. A missing
// transcoder is degraded, not unhealthy.
func (r *Resolver) Health(context.Context) component.Health {
	res, done := r.Resolution()
	switch {
	case !done:
		return component.Health{Name: r.Name(), Status: component.StatusDegraded, Message: "resolution in progress"}
	case res.Available():
		return component.Health{
			Name:    r.Name(),
			Status:  component.StatusHealthy,
			Details: map[string]any{"path": res.Path, "version": res.Version},
		}
	default:
		return component.Health{
			Name:    r.Name(),
			Status:  component.StatusDegraded,
			Message: res.Reason,
			Details: map[string]any{"candidates": res.Candidates},
		}
	}
}
