package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string         `json:"name"`
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthChecker reports health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) Health
}

// Component represents a lifecycle-managed infrastructure component.
type Component interface {
	HealthChecker

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error
}

// Description is a one-line summary logged at startup.
type Description struct {
	Name    string
	Type    string
	Details string
}

// Describable is optionally implemented by components to describe
// themselves in the startup log.
type Describable interface {
	Describe() Description
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) Health
}

// Name returns the check name.
func (c CheckFunc) Name() string { return c.CheckName }

// Health runs the check and fills in the name.
func (c CheckFunc) Health(ctx context.Context) Health {
	h := c.Fn(ctx)
	h.Name = c.CheckName
	return h
}
