package bootstrap

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voiceingest/component"
	"github.com/kbukum/voiceingest/config"
	"github.com/kbukum/voiceingest/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
	invalid              bool
}

func (c *testConfig) Validate() error {
	if c.invalid {
		return errors.New("invalid section")
	}
	return c.ServiceConfig.Validate()
}

type fakeComponent struct {
	name     string
	startErr error
	status   component.HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return nil
}

func (f *fakeComponent) Health(context.Context) component.Health {
	status := f.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: f.name, Status: status}
}

func newApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "voiceingest", Version: "1.0.0"}},
		WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newApp(t)
	if app.Name != "voiceingest" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults should be applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected graceful timeout option, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	if _, err := NewApp(&testConfig{}); err == nil {
		t.Error("expected error for missing name")
	}
	_, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "x"}, invalid: true})
	if err == nil || !strings.Contains(err.Error(), "invalid section") {
		t.Errorf("section validation should run, got %v", err)
	}
}

func TestRunLifecycleOrder(t *testing.T) {
	app := newApp(t)
	var events []string
	_ = app.RegisterComponent(&fakeComponent{name: "database", events: &events})

	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return a.RegisterComponent(&fakeComponent{name: "http-server", events: &events})
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })
	app.AfterStop(func(context.Context) error { events = append(events, "afterStop"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"start:database", "onStart", "configure", "start:http-server", "onReady",
		"onStop", "stop:http-server", "stop:database", "afterStop",
	}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v\nwant     %v", events, want)
	}
}

func TestRunStartFailureStopsStarted(t *testing.T) {
	app := newApp(t)
	var events []string
	_ = app.RegisterComponent(&fakeComponent{name: "database", events: &events})
	_ = app.RegisterComponent(&fakeComponent{name: "redis", startErr: errors.New("refused"), events: &events})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("expected start error, got %v", err)
	}
	if !slices.Contains(events, "stop:database") {
		t.Errorf("started components should be stopped, events %v", events)
	}
	if slices.Contains(events, "stop:redis") {
		t.Errorf("failed component should not be stopped, events %v", events)
	}
}

func TestRunConfigureError(t *testing.T) {
	app := newApp(t)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("no provider") })
	if err := app.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newApp(t)
	var events []string
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("empty registry should be ready: %v", err)
	}
	_ = app.RegisterComponent(&fakeComponent{name: "redis", status: component.StatusDegraded, events: &events})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis=degraded") {
		t.Errorf("expected degraded report, got %v", err)
	}
}

func TestShutdownHookErrorsAreJoined(t *testing.T) {
	app := newApp(t)
	app.OnStop(func(context.Context) error { return errors.New("drain failed") })
	app.AfterStop(func(context.Context) error { return errors.New("flush failed") })
	err := app.Shutdown()
	if err == nil || !strings.Contains(err.Error(), "drain failed") || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("expected both hook errors, got %v", err)
	}
}

func TestSummaryRoutes(t *testing.T) {
	s := NewSummary("voiceingest", "1.0.0")
	s.TrackRoute("POST", "/api/stt/transcribe", "Handler.Transcribe")
	if got := s.Routes(); len(got) != 1 || got[0].Path != "/api/stt/transcribe" {
		t.Errorf("unexpected routes %+v", got)
	}
	s.Log(context.Background(), component.NewRegistry(nil), logger.Nop())
}
