package process

import (
	"io"
	"time"
)

// Command describes one tool invocation.
type Command struct {
	// Binary is an absolute path or a name looked up on PATH.
	Binary string
	Args   []string
	// Stdin is optional.
	Stdin io.Reader
	// Timeout bounds the run. Zero means the caller's context is the only bound.
	Timeout time.Duration
	// GracePeriod separates SIGTERM from SIGKILL. Zero means 5s.
	GracePeriod time.Duration
	// OutputLimit keeps only the last OutputLimit bytes of stdout and of
	// stderr. Zero keeps everything.
	OutputLimit int
}

// tailBuffer is an io.Writer that retains the last limit bytes written.
type tailBuffer struct {
	limit     int
	buf       []byte
	truncated bool
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if t.limit <= 0 {
		t.buf = append(t.buf, p...)
		return n, nil
	}
	if len(p) >= t.limit {
		t.truncated = t.truncated || len(t.buf) > 0 || len(p) > t.limit
		t.buf = append(t.buf[:0], p[len(p)-t.limit:]...)
		return n, nil
	}
	if over := len(t.buf) + len(p) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.truncated = true
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
