package transcription

import "github.com/kbukum/voiceingest/provider"

// NewRegistry creates an empty registry for transcription providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
