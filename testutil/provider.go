package testutil

import (
	"context"
	"os"
	"sync"

	"github.com/kbukum/voiceingest/transcription"
)

// Provider is a scriptable transcription.Provider. It records every
// request and fails if the audio file is missing when called.
type Provider struct {
	Text  string
	Err   error
	Panic any

	mu       sync.Mutex
	requests []transcription.Request
}

var _ transcription.Provider = (*Provider)(nil)

// Name implements transcription.Provider.
func (p *Provider) Name() string { return "fake" }

// IsAvailable implements transcription.Provider.
func (p *Provider) IsAvailable(context.Context) bool { return true }

// Transcribe implements transcription.Provider.
func (p *Provider) Transcribe(_ context.Context, req transcription.Request) (*transcription.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Panic != nil {
		panic(p.Panic)
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, err
	}
	return &transcription.Response{Text: p.Text}, nil
}

// Requests returns the requests seen so far.
func (p *Provider) Requests() []transcription.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]transcription.Request(nil), p.requests...)
}
