package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/voiceingest/cleanup"
	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/process"
	"github.com/kbukum/voiceingest/resilience"
	"github.com/kbukum/voiceingest/toolchain"
	"github.com/kbukum/voiceingest/util"
)

// maxToolOutput caps the stdout and stderr kept from one transcoder run.
const maxToolOutput = 64 << 10

// ToolResolver provides the transcoder executable.
type ToolResolver interface {
	Resolve(ctx context.Context) toolchain.Resolution
}

// Prepared is the audio handed to the speech provider.
type Prepared struct {
	Path      string
	FileName  string
	MimeType  string
	Converted bool
}

// Engine converts uploads that the provider cannot take directly.
type Engine struct {
	cfg      Config
	format   Format
	resolver ToolResolver
	runner   *process.Runner
	log      *logger.Logger
}

// NewEngine creates an Engine producing Speech16kMono output.
func NewEngine(cfg Config, resolver ToolResolver, log *logger.Logger) *Engine {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		cfg:      cfg,
		format:   Speech16kMono,
		resolver: resolver,
		runner: process.NewRunner(process.RunnerConfig{
			Name:          "transcode",
			MaxConcurrent: cfg.MaxConcurrent,
			QueueTimeout:  cfg.QueueTimeout,
			Timeout:       cfg.Timeout,
			GracePeriod:   cfg.GracePeriod,
		}),
		log: log.WithComponent("transcode"),
	}
}

// Prepare returns audio ready for transcription. Formats that need no
// conversion are returned as uploaded. Converted output is tracked by scope
// before the transcoder starts.
func (e *Engine) Prepare(ctx context.Context, audio *intake.UploadedAudio, scope *cleanup.Scope, opts ...PrepareOption) (*Prepared, error) {
	var o prepareOptions
	for _, opt := range opts {
		opt(&o)
	}

	mimeType := DetectMimeType(audio.Path, audio.MimeType)
	if !NeedsConversion(mimeType) {
		o.enter(StagePassThrough)
		return &Prepared{
			Path:     audio.Path,
			FileName: providerFileName(audio.FileName, audio.Path, mimeType),
			MimeType: mimeType,
		}, nil
	}

	o.enter(StageResolving)
	tool := e.resolver.Resolve(ctx)
	if !tool.Available() {
		e.log.Warn("transcoder unavailable", logger.Fields("reason", tool.Reason, logger.FieldMimeType, mimeType))
		return nil, apperrors.STTUnavailable(tool.Reason)
	}

	out := audio.Path + e.format.Suffix
	scope.Track(out)

	o.enter(StageTranscoding)
	start := time.Now()
	res, err := e.runner.Run(ctx, process.Command{
		Binary:      tool.Path,
		Args:        e.format.Args(audio.Path, out),
		OutputLimit: maxToolOutput,
	})
	if err != nil {
		return nil, e.failure(res, err)
	}
	if err := e.verify(out); err != nil {
		return nil, e.failure(res, err)
	}

	o.enter(StageVerified)
	e.log.Debug("audio converted", logger.Fields(
		logger.FieldMimeType, mimeType,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return &Prepared{
		Path:      out,
		FileName:  filepath.Base(out),
		MimeType:  e.format.MimeType,
		Converted: true,
	}, nil
}

// verify checks that out is a non-empty WAV in the target format.
func (e *Engine) verify(out string) error {
	info, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("output is empty")
	}
	hdr, err := ReadWAVHeader(out)
	if err != nil {
		return err
	}
	if !e.format.matches(hdr) {
		return fmt.Errorf("unexpected output format: tag %d, %d-bit, %d Hz, %d channel(s)",
			hdr.AudioFormat, hdr.BitsPerSample, hdr.SampleRate, hdr.Channels)
	}
	return nil
}

func (e *Engine) failure(res *process.Result, err error) error {
	if resilience.IsRejection(err) {
		e.log.Warn("transcoder saturated", logger.ErrorFields("transcode", err))
		return apperrors.STTUnavailable("transcoder busy").WithCause(err)
	}

	exitCode := -1
	var stderr, stdout string
	timedOut := false
	if res != nil {
		exitCode = res.ExitCode
		stderr = util.Tail(string(res.Stderr), e.cfg.ExcerptBytes)
		stdout = util.Tail(string(res.Stdout), e.cfg.ExcerptBytes)
		timedOut = res.TimedOut
	}

	appErr := apperrors.TranscodeFailed(exitCode, stderr, stdout).WithCause(err)
	if timedOut {
		appErr.WithDetail("timeout", true)
	}
	e.log.Error("transcode failed", logger.Fields(
		"exit_code", exitCode,
		"timeout", timedOut,
		logger.FieldError, err.Error(),
	))
	return appErr
}
