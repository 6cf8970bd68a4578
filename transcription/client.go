package transcription

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/resilience"
)

// Client calls a single provider exactly once per request.
type Client struct {
	provider Provider
	cfg      Config
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

// NewClient wraps p with an app-level timeout and a circuit breaker.
func NewClient(p Provider, cfg Config, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("transcription").WithFields(logger.Fields(logger.FieldProvider, p.Name()))

	breakerCfg := cfg.Breaker
	breakerCfg.IsFailure = countsAgainstBreaker
	onChange := cfg.Breaker.OnStateChange
	breakerCfg.OnStateChange = func(name string, from, to resilience.State) {
		log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
		if onChange != nil {
			onChange(name, from, to)
		}
	}

	return &Client{
		provider: p,
		cfg:      cfg,
		breaker:  resilience.NewCircuitBreaker(breakerCfg),
		log:      log,
	}
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider { return c.provider }

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() resilience.State { return c.breaker.State() }

// Transcribe calls the provider once. Failures are returned as
// *errors.AppError: unsupported_audio_format, stt_unavailable or stt_failed.
func (c *Client) Transcribe(ctx context.Context, req Request) (*Response, error) {
	if req.Language == "" {
		req.Language = c.cfg.Language
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	var resp *Response
	err := c.breaker.Execute(func() error {
		var callErr error
		resp, callErr = c.provider.Transcribe(ctx, req)
		if callErr == nil && resp == nil {
			callErr = &Error{Kind: KindUnknown, Provider: c.provider.Name(), Message: "empty response"}
		}
		return callErr
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	c.log.Debug("transcription completed", logger.Fields(
		logger.FieldMimeType, req.MimeType,
		logger.FieldDuration, time.Since(start).Milliseconds(),
		"chars", len(resp.Text),
	))
	return resp, nil
}

func (c *Client) mapError(err error) error {
	kind := Classify(err)
	fields := logger.Fields("kind", kind.String(), logger.FieldError, err.Error())

	switch kind {
	case KindFormatRejected:
		c.log.Warn("provider rejected audio", fields)
		return apperrors.UnsupportedAudioFormat(err)
	case KindUnavailable:
		c.log.Error("provider unavailable", fields)
		reason := "provider unavailable"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			reason = "provider circuit open"
		}
		return apperrors.STTUnavailable(reason).WithCause(err)
	default:
		c.log.Error("transcription failed", fields)
		return apperrors.STTFailed(err)
	}
}

// countsAgainstBreaker excludes failures caused by the request itself.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return Classify(err) != KindFormatRejected
}
