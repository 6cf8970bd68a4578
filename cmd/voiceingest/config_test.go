package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voiceingest/bootstrap"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/usage"
)

func TestConfigDefaultsValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Name != serviceName || cfg.Version == "" {
		t.Errorf("unexpected identity %q %q", cfg.Name, cfg.Version)
	}
	if cfg.Usage.Backend != usage.BackendMemory || cfg.Transcription.Provider != "openai" {
		t.Errorf("unexpected defaults: backend=%q provider=%q", cfg.Usage.Backend, cfg.Transcription.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestConfigValidateChecksSelectedBackendOnly(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Redis.ReadTimeout = "soon"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("redis section is unused with the memory backend: %v", err)
	}

	cfg.Usage.Backend = usage.BackendRedis
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Errorf("expected redis validation error, got %v", err)
	}
}

func TestStoreSelection(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Database.DSN = ":memory:"
	cfg.Database.LogLevel = "silent"
	cfg.Usage.Backend = usage.BackendDatabase

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithLogger(logger.Nop()), bootstrap.WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	sc, err := registerStores(app, cfg.Usage.Backend)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.build(cfg.Usage); err == nil {
		t.Error("database store needs a started database")
	}

	ctx := context.Background()
	if err := app.Components.StartAll(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = app.Components.StopAll(ctx) })

	store, err := sc.build(cfg.Usage)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := store.(*usage.GormStore); !ok {
		t.Errorf("expected GormStore, got %T", store)
	}

	memory, err := (&storeComponents{}).build(usage.Config{Backend: usage.BackendMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := memory.(*usage.MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", memory)
	}
}
