package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// InitMeter initializes the OTLP meter provider and installs it globally.
// The provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline's instruments.
type Metrics struct {
	requestTotal       metric.Int64Counter
	requestDuration    metric.Float64Histogram
	requestActive      metric.Int64UpDownCounter
	transcodeDuration  metric.Float64Histogram
	transcribeDuration metric.Float64Histogram
	ledgerWrites       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("stt.requests",
		metric.WithDescription("Transcription requests by terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("stt.request.duration",
		metric.WithDescription("End-to-end pipeline duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("stt.requests.active",
		metric.WithDescription("Pipelines currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.requests.active counter: %w", err)
	}

	transcodeDuration, err := meter.Float64Histogram("stt.transcode.duration",
		metric.WithDescription("Transcoder subprocess duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.transcode.duration histogram: %w", err)
	}

	transcribeDuration, err := meter.Float64Histogram("stt.transcribe.duration",
		metric.WithDescription("Provider call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.transcribe.duration histogram: %w", err)
	}

	ledgerWrites, err := meter.Int64Counter("stt.ledger.writes",
		metric.WithDescription("Usage ledger writes by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stt.ledger.writes counter: %w", err)
	}

	return &Metrics{
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestActive:      requestActive,
		transcodeDuration:  transcodeDuration,
		transcribeDuration: transcribeDuration,
		ledgerWrites:       ledgerWrites,
	}, nil
}

// RequestStarted increments the active pipeline count.
func (m *Metrics) RequestStarted(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RequestFinished records a completed pipeline by terminal state and error code.
func (m *Metrics) RequestFinished(ctx context.Context, state, code string, d time.Duration) {
	m.requestActive.Add(ctx, -1)
	attrs := metric.WithAttributes(
		attribute.String("state", state),
		attribute.String("code", code),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("state", state)))
}

// TranscodeFinished records one transcoder run.
func (m *Metrics) TranscodeFinished(ctx context.Context, status string, d time.Duration) {
	m.transcodeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// TranscribeFinished records one provider call.
func (m *Metrics) TranscribeFinished(ctx context.Context, provider, status string, d time.Duration) {
	m.transcribeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// LedgerWrite records a ledger result: recorded, already_recorded, skipped or error.
func (m *Metrics) LedgerWrite(ctx context.Context, result string) {
	m.ledgerWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
