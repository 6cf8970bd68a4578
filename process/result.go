package process

import "time"

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
	// TimedOut is set when Command.Timeout expired before the process exited.
	TimedOut bool
	// Truncated is set when OutputLimit dropped earlier output.
	Truncated bool
}

// Output returns stdout, falling back to stderr. Some tools print their
// banner on stderr.
func (r *Result) Output() []byte {
	if r == nil {
		return nil
	}
	if len(r.Stdout) > 0 {
		return r.Stdout
	}
	return r.Stderr
}
