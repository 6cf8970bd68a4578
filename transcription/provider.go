package transcription

import (
	"context"

	"github.com/kbukum/voiceingest/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	// Failures should be reported as *Error so they classify precisely.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
