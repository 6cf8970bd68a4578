package transcription

import (
	"context"

	"github.com/kbukum/voiceingest/component"
	"github.com/kbukum/voiceingest/resilience"
)

var _ component.HealthChecker = (*Client)(nil)

// Name implements component.HealthChecker.
func (c *Client) Name() string { return "transcription" }

// Health reports provider availability and the breaker state.
func (c *Client) Health(ctx context.Context) component.Health {
	state := c.breaker.State()
	h := component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Details: map[string]any{"provider": c.provider.Name(), "breaker": state.String()},
	}
	switch {
	case !c.provider.IsAvailable(ctx):
		h.Status = component.StatusUnhealthy
		h.Message = "provider unavailable"
	case state != resilience.StateClosed:
		h.Status = component.StatusDegraded
		h.Message = "circuit " + state.String()
	}
	return h
}
