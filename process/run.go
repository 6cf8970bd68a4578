package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// ErrTimeout is returned when Command.Timeout expires before the process exits.
var ErrTimeout = errors.New("process: timed out")

// Run executes a subprocess and waits for it to complete.
// If the context is canceled or the timeout expires, SIGTERM is sent to the
// process group first, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...) //nolint:gosec // running configured tools is the purpose of this package
	stdout := &tailBuffer{limit: cmd.OutputLimit}
	stderr := &tailBuffer{limit: cmd.OutputLimit}
	c.Stdout = stdout
	c.Stderr = stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Own process group so the whole tree is signalled.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		ExitCode:  c.ProcessState.ExitCode(),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if err == nil {
		return result, nil
	}
	if c.ProcessState == nil && runCtx.Err() == nil {
		return result, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}
	if runCtx.Err() != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			return result, fmt.Errorf("%w after %s", ErrTimeout, cmd.Timeout)
		}
		return result, fmt.Errorf("process: killed by context: %w", runCtx.Err())
	}
	return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
}
