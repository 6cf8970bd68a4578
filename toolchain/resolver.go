package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/process"
)

// Resolver resolves the executable at most once and hands the result to
// any number of concurrent waiters.
type Resolver struct {
	cfg Config
	log *logger.Logger

	once   sync.Once
	done   chan struct{}
	result Resolution

	// lookPath is exec.LookPath outside tests.
	lookPath func(string) (string, error)
}

// NewResolver creates a Resolver. Nothing runs until the first Resolve.
func NewResolver(cfg Config, log *logger.Logger) *Resolver {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		cfg:      cfg,
		log:      log.WithComponent("toolchain"),
		done:     make(chan struct{}),
		lookPath: exec.LookPath,
	}
}

// Resolve returns the resolution, starting it on first use. It waits at most
// WaitTimeout, and never past ctx. A caller that gives up gets an unavailable
// result while resolution continues for later callers.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	r.Start()

	select {
	case <-r.done:
		return r.result
	default:
	}

	timer := time.NewTimer(r.cfg.WaitTimeout)
	defer timer.Stop()

	select {
	case <-r.done:
		return r.result
	case <-timer.C:
		r.log.Warn("gave up waiting for tool resolution", logger.Fields("wait", r.cfg.WaitTimeout.String()))
		return unavailable(ReasonWaitTimedOut)
	case <-ctx.Done():
		return unavailable(fmt.Sprintf("resolution in progress: %v", ctx.Err()))
	}
}

// Start begins resolution in the background if it has not started yet.
func (r *Resolver) Start() {
	r.once.Do(func() {
		go func() {
			defer close(r.done)
			r.result = r.resolve()
		}()
	})
}

// Resolution returns the completed result and true, or false while
// resolution has not finished.
func (r *Resolver) Resolution() (Resolution, bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return Resolution{}, false
	}
}

func (r *Resolver) resolve() Resolution {
	start := time.Now()
	var res Resolution

	for _, c := range r.candidates() {
		if c.Error != "" {
			res.Candidates = append(res.Candidates, c)
			continue
		}
		version, err := r.probe(c.Path)
		if err != nil {
			c.Error = err.Error()
			res.Candidates = append(res.Candidates, c)
			r.log.Debug("candidate rejected", logger.Fields("tier", string(c.Tier), logger.FieldPath, c.Path, logger.FieldError, c.Error))
			continue
		}
		c.OK = true
		res.Candidates = append(res.Candidates, c)
		res.Path = c.Path
		res.Version = version
		r.log.Info("tool resolved", logger.Fields(
			"tier", string(c.Tier),
			logger.FieldPath, c.Path,
			"version", version,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
		return res
	}

	res.Reason = fmt.Sprintf("%s not found: tried %d candidate(s)", r.cfg.Name, len(res.Candidates))
	r.log.Error("tool unavailable", logger.Fields("reason", res.Reason, "candidates", res.Candidates))
	return res
}

func (r *Resolver) candidates() []Candidate {
	var out []Candidate
	if r.cfg.Path != "" {
		out = append(out, Candidate{Tier: TierConfigured, Path: r.cfg.Path})
	}
	if r.cfg.Name != "" {
		c := Candidate{Tier: TierPath, Path: r.cfg.Name}
		if p, err := r.lookPath(r.cfg.Name); err != nil {
			c.Error = err.Error()
		} else {
			c.Path = p
		}
		out = append(out, c)
	}
	if r.cfg.BundledPath != "" {
		out = append(out, Candidate{Tier: TierBundled, Path: r.cfg.BundledPath})
	}
	return out
}

// probe runs the candidate with the version flag and returns the first
// line of its output.
func (r *Resolver) probe(path string) (string, error) {
	res, err := process.Run(context.Background(), process.Command{
		Binary:      path,
		Args:        []string{r.cfg.VersionFlag},
		Timeout:     r.cfg.ProbeTimeout,
		GracePeriod: time.Second,
		OutputLimit: 4 << 10,
	})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(string(res.Output()))
	if out == "" {
		return "", fmt.Errorf("no version output")
	}
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(line), nil
}
