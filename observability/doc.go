// Package observability provides OpenTelemetry tracing and metrics for
// the ingestion pipeline.
//
//	shutdown, err := observability.Init(ctx, cfg, "voiceingest", version.Get().Short(), env, log)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("voiceingest"))
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscode)
//	defer span.End()
//
// When disabled, the global no-op providers stay in place and every
// instrument and span is free.
package observability
