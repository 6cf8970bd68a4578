package transcription

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kbukum/voiceingest/resilience"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindFormatRejected means the provider refused the audio content.
	// Retrying with the same bytes cannot succeed.
	KindFormatRejected
	// KindUnavailable means the provider is not configured or not reachable.
	KindUnavailable
	// KindTransient is a failure that may succeed on retry.
	KindTransient
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFormatRejected:
		return "format_rejected"
	case KindUnavailable:
		return "unavailable"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// ErrNotConfigured is returned by providers missing required settings.
var ErrNotConfigured = errors.New("transcription: provider not configured")

// Error is a classified provider failure.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// formatHints are message fragments providers use when refusing audio.
var formatHints = []string{
	"format", "decode", "codec", "unsupported", "invalid file", "could not be processed", "corrupt",
}

// ClassifyHTTP maps an HTTP status and error message to a Kind.
func ClassifyHTTP(status int, message string) Kind {
	switch {
	case status == http.StatusUnsupportedMediaType:
		return KindFormatRejected
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if mentionsFormat(message) {
			return KindFormatRejected
		}
		return KindUnknown
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound:
		return KindUnavailable
	case status == http.StatusServiceUnavailable:
		return KindUnavailable
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

func mentionsFormat(message string) bool {
	m := strings.ToLower(message)
	for _, h := range formatHints {
		if strings.Contains(m, h) {
			return true
		}
	}
	return false
}

// ClassifyTransport maps a failure to reach the provider to a Kind.
func ClassifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindUnavailable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnavailable
	}
	return KindTransient
}

// Classify returns the Kind of err.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, ErrNotConfigured) {
		return KindUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindUnknown
}
