// Package openai implements transcription.Provider on the OpenAI audio
// transcriptions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/voiceingest/provider"
	"github.com/kbukum/voiceingest/transcription"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultModel   = goopenai.Whisper1
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	// Format is the response format requested from the API.
	Format  goopenai.AudioResponseFormat
	Timeout time.Duration
}

// Provider implements transcription.Provider using go-openai.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Format == "" {
		cfg.Format = goopenai.AudioResponseFormatJSON
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{cfg: cfg, client: goopenai.NewClientWithConfig(clientCfg)}
}

// Factory returns a provider.Factory that creates OpenAI providers from a
// generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return NewProvider(Config{
			APIKey:   provider.String(cfg, "api_key"),
			BaseURL:  provider.String(cfg, "base_url"),
			Model:    provider.String(cfg, "model"),
			Language: provider.String(cfg, "language"),
			Format:   goopenai.AudioResponseFormat(provider.String(cfg, "response_format")),
			Timeout:  provider.Duration(cfg, "timeout", 0),
		}), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether an API key is configured. It does not call
// the API.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// Transcribe uploads the audio file and returns the transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if p.cfg.APIKey == "" {
		return nil, &transcription.Error{Kind: transcription.KindUnavailable, Provider: ProviderName, Err: transcription.ErrNotConfigured}
	}

	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	name := req.FileName
	if name == "" {
		name = filepath.Base(req.AudioPath)
	}
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    model,
		FilePath: name,
		Reader:   f,
		Language: lang,
		Format:   p.cfg.Format,
	})
	if err != nil {
		return nil, classify(err)
	}
	return toResponse(&resp), nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &transcription.Error{
			Kind:       transcription.ClassifyHTTP(apiErr.HTTPStatusCode, apiErr.Message),
			Provider:   ProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &transcription.Error{
			Kind:       transcription.ClassifyHTTP(reqErr.HTTPStatusCode, string(reqErr.Body)),
			Provider:   ProviderName,
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}
	return &transcription.Error{
		Kind:     transcription.ClassifyTransport(err),
		Provider: ProviderName,
		Err:      err,
	}
}

func toResponse(resp *goopenai.AudioResponse) *transcription.Response {
	out := &transcription.Response{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}
	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return out
}
