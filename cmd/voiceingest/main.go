// Command voiceingest serves the speech-to-text ingestion API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/voiceingest/api"
	"github.com/kbukum/voiceingest/bootstrap"
	"github.com/kbukum/voiceingest/config"
	"github.com/kbukum/voiceingest/database"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/observability"
	"github.com/kbukum/voiceingest/pipeline"
	"github.com/kbukum/voiceingest/quota"
	"github.com/kbukum/voiceingest/redis"
	"github.com/kbukum/voiceingest/server"
	"github.com/kbukum/voiceingest/toolchain"
	"github.com/kbukum/voiceingest/transcode"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/transcription/providers"
	"github.com/kbukum/voiceingest/usage"
)

const serviceName = "voiceingest"

func main() {
	if err := run(context.Background()); err != nil {
		logger.Error("voiceingest exited", logger.Fields(logger.FieldError, err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	resolver := toolchain.NewResolver(cfg.Toolchain, log)
	resolver.Start()
	app.Components.AddCheck(resolver)

	stores, err := registerStores(app, cfg.Usage.Backend)
	if err != nil {
		return err
	}

	var pipe *pipeline.Pipeline
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		store, err := stores.build(a.Cfg.Usage)
		if err != nil {
			return err
		}
		tiers, err := quota.NewStaticTiers(a.Cfg.Quota)
		if err != nil {
			return err
		}
		ledger := usage.NewLedger(store, tiers, a.Logger)

		provider, err := providers.Build(a.Cfg.Transcription)
		if err != nil {
			return fmt.Errorf("transcription provider: %w", err)
		}
		client := transcription.NewClient(provider, a.Cfg.Transcription, a.Logger)
		a.Components.AddCheck(client)

		pipe, err = pipeline.New(
			intake.New(a.Cfg.Intake, a.Logger),
			transcode.NewEngine(a.Cfg.Transcode, resolver, a.Logger),
			client,
			ledger,
			a.Logger,
			pipeline.WithProviderName(provider.Name()),
		)
		if err != nil {
			return err
		}

		srv := server.New(a.Cfg.Server, a.Logger)
		srv.ApplyMiddleware()
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll)
		api.NewHandler(pipe, ledger, a.Cfg.Intake.Identity, a.Logger).Register(srv.GinEngine())
		for _, r := range srv.Routes() {
			a.Summary.TrackRoute(r.Method, r.Path, r.Handler)
		}
		return a.RegisterComponent(server.NewComponent(srv))
	})

	app.AfterStop(
		func(ctx context.Context) error {
			if pipe == nil {
				return nil
			}
			return pipe.Wait(ctx)
		},
		bootstrap.Hook(shutdownTelemetry),
	)

	return app.Run(ctx)
}

// storeComponents holds whichever infrastructure the usage backend needs.
type storeComponents struct {
	db    *database.Component
	redis *redis.Component
}

// registerStores registers the components backing the selected ledger.
// They start in Phase 1, before the ledger is built.
func registerStores(app *bootstrap.App[*Config], backend string) (*storeComponents, error) {
	sc := &storeComponents{}
	switch backend {
	case usage.BackendDatabase:
		sc.db = database.NewComponent(app.Cfg.Database, app.Logger).WithAutoMigrate(usage.Models()...)
		return sc, app.RegisterComponent(sc.db)
	case usage.BackendRedis:
		sc.redis = redis.NewComponent(app.Cfg.Redis, app.Logger)
		return sc, app.RegisterComponent(sc.redis)
	}
	return sc, nil
}

func (sc *storeComponents) build(cfg usage.Config) (usage.Store, error) {
	switch cfg.Backend {
	case usage.BackendDatabase:
		if sc.db == nil || sc.db.DB() == nil {
			return nil, fmt.Errorf("usage: database backend selected but database is not started")
		}
		return usage.NewGormStore(sc.db.DB()), nil
	case usage.BackendRedis:
		if sc.redis == nil || sc.redis.Client() == nil {
			return nil, fmt.Errorf("usage: redis backend selected but redis is not started")
		}
		return usage.NewRedisStore(sc.redis.Client(), cfg.AttemptTTL, cfg.CounterTTL), nil
	default:
		return usage.NewMemoryStore(), nil
	}
}
