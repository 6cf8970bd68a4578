package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/voiceingest/component"
	"github.com/kbukum/voiceingest/logger"
)

// RouteInfo is one HTTP route listed at startup.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary collects what is logged once startup completes.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
}

// NewSummary creates an empty Summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// Routes returns the tracked routes.
func (s *Summary) Routes() []RouteInfo {
	return s.routes
}

// Log writes one line per component with its live health, one per route,
// and a closing line with the startup time.
func (s *Summary) Log(ctx context.Context, registry *component.Registry, log *logger.Logger) {
	healthy, total := 0, 0
	for _, h := range registry.HealthAll(ctx) {
		total++
		if h.Status == component.StatusHealthy {
			healthy++
		}
		fields := logger.Fields("name", h.Name, "status", string(h.Status))
		if h.Message != "" {
			fields["message"] = h.Message
		}
		if c, ok := registry.Get(h.Name); ok {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				fields["type"] = desc.Type
				fields["details"] = desc.Details
			}
		}
		log.Info("component", fields)
	}
	for _, r := range s.routes {
		log.Info("route", logger.Fields("method", r.Method, "path", r.Path, "handler", r.Handler))
	}
	log.Info("startup complete", logger.Fields(
		"service", s.serviceName,
		"version", s.version,
		"healthy", healthy,
		"total", total,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
}
