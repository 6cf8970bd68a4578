// Package providers registers the built-in transcription backends.
package providers

import (
	"github.com/kbukum/voiceingest/provider"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/transcription/openai"
	"github.com/kbukum/voiceingest/transcription/whisper"
)

// NewRegistry returns a registry with the openai and whisper factories.
func NewRegistry() *provider.Registry[transcription.Provider] {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(openai.ProviderName, openai.Factory())
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
	return reg
}

// Build creates the provider selected by cfg.
func Build(cfg transcription.Config) (transcription.Provider, error) {
	cfg.ApplyDefaults()
	return NewRegistry().Build(cfg.Provider, cfg.ProviderConfig())
}
