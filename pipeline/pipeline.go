package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voiceingest/cleanup"
	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/observability"
	"github.com/kbukum/voiceingest/transcode"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/usage"
)

// Acceptor validates and spools an upload.
type Acceptor interface {
	Accept(r *http.Request, scope *cleanup.Scope) (*intake.UploadedAudio, error)
}

// Transcoder turns an upload into provider-ready audio.
type Transcoder interface {
	Prepare(ctx context.Context, audio *intake.UploadedAudio, scope *cleanup.Scope, opts ...transcode.PrepareOption) (*transcode.Prepared, error)
}

// Transcriber calls the speech provider.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error)
}

// Recorder writes the usage ledger.
type Recorder interface {
	RecordTranscription(ctx context.Context, identity, key, transcript string) (usage.Outcome, error)
}

// Result is what a run produced. Trace is always set.
type Result struct {
	Transcript string
	Usage      *usage.Usage
	Identity   string
	Trace      Trace
}

// Pipeline wires the stages together. It is safe for concurrent use.
type Pipeline struct {
	intake      Acceptor
	transcoder  Transcoder
	transcriber Transcriber
	recorder    Recorder
	provider    string
	metrics     *observability.Metrics
	log         *logger.Logger
	pending     sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProviderName labels provider metrics and spans.
func WithProviderName(name string) Option {
	return func(p *Pipeline) { p.provider = name }
}

// New creates a Pipeline.
func New(in Acceptor, tc Transcoder, tr Transcriber, rec Recorder, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{
		intake:      in,
		transcoder:  tc,
		transcriber: tr,
		recorder:    rec,
		log:         log.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter("voiceingest"))
		if err != nil {
			return nil, fmt.Errorf("pipeline metrics: %w", err)
		}
		p.metrics = m
	}
	return p, nil
}

// run carries the per-request state.
type run struct {
	p     *Pipeline
	log   *logger.Logger
	trace Trace
	audio *intake.UploadedAudio
}

func (r *run) enter(s State) {
	r.trace = append(r.trace, s)
	r.log.Debug("state changed", logger.Fields(logger.FieldState, string(s)))
}

// Run executes one request. The returned error is always an
// *errors.AppError; Result is returned in both cases and carries the trace.
// Temporary files are released before Run returns, asynchronously.
func (p *Pipeline) Run(ctx context.Context, req *http.Request, requestID string) (res *Result, err error) {
	start := time.Now()
	res = &Result{}
	r := &run{p: p, log: p.log.WithFields(logger.Fields(logger.FieldRequestID, requestID))}
	r.enter(Received)

	ctx, span := observability.StartSpan(ctx, observability.SpanPipeline,
		trace.WithAttributes(attribute.String(observability.AttrRequestID, requestID)))
	p.metrics.RequestStarted(ctx)

	scope := cleanup.NewScope(r.log)
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("pipeline panic", logger.Fields("panic", fmt.Sprint(rec), "stack", string(debug.Stack())))
			err = apperrors.Internal(fmt.Errorf("panic: %v", rec))
			r.enter(UnexpectedFailure)
		}
		p.release(scope)
		r.enter(Cleaned)
		r.enter(Responded)
		res.Trace = r.trace
		p.finish(ctx, span, r, start, err)
	}()

	text, u, identity, err := r.execute(ctx, req, scope)
	res.Transcript, res.Usage, res.Identity = text, u, identity
	if err != nil {
		err = apperrors.From(err)
		r.enter(failureState(err))
	}
	return res, err
}

func (r *run) execute(ctx context.Context, req *http.Request, scope *cleanup.Scope) (string, *usage.Usage, string, error) {
	p := r.p

	_, intakeSpan := observability.StartSpan(ctx, observability.SpanIntake)
	audio, err := p.intake.Accept(req, scope)
	intakeSpan.End()
	if err != nil {
		return "", nil, "", err
	}
	r.audio = audio
	r.log = r.log.WithFields(logger.Fields(logger.FieldUserID, audio.Identity))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(observability.AttrUserID, audio.Identity))
	r.enter(Validated)

	prepared, err := r.prepare(ctx, audio, scope)
	if err != nil {
		return "", nil, audio.Identity, err
	}

	r.enter(Transcribing)
	resp, err := r.transcribe(ctx, prepared)
	if err != nil {
		return "", nil, audio.Identity, err
	}

	u := r.record(ctx, req, audio.Identity, resp.Text)
	return resp.Text, u, audio.Identity, nil
}

func (r *run) prepare(ctx context.Context, audio *intake.UploadedAudio, scope *cleanup.Scope) (*transcode.Prepared, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscode, trace.WithAttributes(
		attribute.String(observability.AttrMimeType, audio.MimeType),
		attribute.Int64(observability.AttrSize, audio.Size),
	))
	defer span.End()

	var transcodeStart time.Time
	hook := transcode.WithStageHook(func(s transcode.Stage) {
		switch s {
		case transcode.StagePassThrough:
			r.enter(PassThrough)
		case transcode.StageResolving:
			r.enter(Resolving)
		case transcode.StageTranscoding:
			transcodeStart = time.Now()
			r.enter(Transcoding)
		case transcode.StageVerified:
			r.enter(Verified)
		}
	})

	prepared, err := r.p.transcoder.Prepare(ctx, audio, scope, hook)
	if !transcodeStart.IsZero() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.p.metrics.TranscodeFinished(ctx, status, time.Since(transcodeStart))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool(observability.AttrConverted, prepared.Converted))
	return prepared, nil
}

func (r *run) transcribe(ctx context.Context, prepared *transcode.Prepared) (*transcription.Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe,
		trace.WithAttributes(attribute.String(observability.AttrProvider, r.p.provider)))
	defer span.End()

	start := time.Now()
	resp, err := r.p.transcriber.Transcribe(ctx, transcription.Request{
		AudioPath: prepared.Path,
		FileName:  prepared.FileName,
		MimeType:  prepared.MimeType,
	})
	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	r.p.metrics.TranscribeFinished(ctx, r.p.provider, status, time.Since(start))
	return resp, err
}

// record writes the ledger. Ledger failures are logged and never fail
// the request.
func (r *run) record(ctx context.Context, req *http.Request, identity, transcript string) *usage.Usage {
	ctx, span := observability.StartSpan(ctx, observability.SpanRecord)
	defer span.End()

	key := usage.IdempotencyKey(req)
	out, err := r.p.recorder.RecordTranscription(ctx, identity, key, transcript)
	switch {
	case err != nil:
		observability.SetSpanError(ctx, err)
		r.p.metrics.LedgerWrite(ctx, "error")
		r.log.Error("usage record failed", logger.Fields(
			logger.FieldIdempotencyKey, key,
			logger.FieldError, err.Error(),
		))
		r.enter(NotRecorded)
		return nil
	case out.Skipped:
		r.p.metrics.LedgerWrite(ctx, "skipped")
		r.enter(NotRecorded)
		return nil
	case out.AlreadyRecorded:
		r.p.metrics.LedgerWrite(ctx, "already_recorded")
	default:
		r.p.metrics.LedgerWrite(ctx, "recorded")
	}
	r.enter(Recorded)
	return out.Usage
}

// release closes scope and tracks its removal for Wait.
func (p *Pipeline) release(scope *cleanup.Scope) {
	scope.Close()
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		scope.Wait()
	}()
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, r *run, start time.Time, err error) {
	outcome := r.trace.Outcome()
	code := ""
	fields := logger.Fields(
		logger.FieldState, string(outcome),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if appErr, ok := apperrors.AsAppError(err); ok {
		code = string(appErr.Code)
		fields["code"] = code
		span.SetAttributes(attribute.String(observability.AttrErrorCode, code))
		observability.SetSpanError(ctx, err)
	}
	if outcome == UnexpectedFailure && r.audio != nil {
		fields["file_name"] = r.audio.FileName
		fields[logger.FieldSize] = r.audio.Size
		fields[logger.FieldMimeType] = r.audio.MimeType
		fields[logger.FieldError] = err.Error()
	}
	span.SetAttributes(attribute.String(observability.AttrState, string(outcome)))
	span.End()
	p.metrics.RequestFinished(ctx, string(outcome), code, time.Since(start))

	if outcome.IsFailure() {
		r.log.Warn("request failed", fields)
	} else {
		r.log.Info("request completed", fields)
	}
}

// Wait blocks until every released scope has removed its files or ctx
// ends.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
