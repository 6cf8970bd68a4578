package process

import (
	"context"
	"time"

	"github.com/kbukum/voiceingest/resilience"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Name identifies the runner in logs.
	Name string `mapstructure:"name"`
	// MaxConcurrent caps simultaneously running processes. Zero means unlimited.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// QueueTimeout is how long a caller waits for a free slot.
	QueueTimeout time.Duration `mapstructure:"queue_timeout"`
	// Timeout is applied to commands that do not set their own.
	Timeout time.Duration `mapstructure:"timeout"`
	// GracePeriod is applied to commands that do not set their own.
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

// Runner executes commands with shared defaults and an optional concurrency cap.
type Runner struct {
	cfg      RunnerConfig
	bulkhead *resilience.Bulkhead
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{cfg: cfg}
	if cfg.MaxConcurrent > 0 {
		r.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          cfg.Name,
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.QueueTimeout,
		})
	}
	return r
}

// Run executes cmd. When the runner is saturated it returns a
// resilience bulkhead error without starting the process.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Timeout == 0 {
		cmd.Timeout = r.cfg.Timeout
	}
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = r.cfg.GracePeriod
	}
	if r.bulkhead == nil {
		return Run(ctx, cmd)
	}
	return resilience.ExecuteWithResult(ctx, r.bulkhead, func() (*Result, error) {
		return Run(ctx, cmd)
	})
}
