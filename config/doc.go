// Package config loads service configuration from a YAML file, an optional
// .env file, and the process environment.
//
// Environment variables override file values. Underscores are expanded into
// nested keys, so TRANSCRIPTION_OPENAI_API_KEY reaches transcription.openai.api_key.
//
//	var cfg AppConfig
//	err := config.LoadConfig("voiceingest", &cfg)
package config
