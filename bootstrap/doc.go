// Package bootstrap runs the voiceingest process lifecycle.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // build the pipeline, register the server component
//	    return nil
//	})
//	err = app.Run(ctx)
//
// Components registered before Run start in Phase 1. OnConfigure callbacks
// run next and may register more components, which start right after.
// Shutdown stops everything in reverse registration order.
package bootstrap
