// Package provider holds the small contract shared by pluggable backends
// and a registry that builds them by name from configuration.
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("openai", openai.Factory())
//	p, err := reg.Build("openai", map[string]any{"api_key": key})
package provider
