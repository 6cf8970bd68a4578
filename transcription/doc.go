// Package transcription defines the speech-to-text provider contract, the
// classification of provider failures, and the Client that calls a single
// provider once per request.
//
// # Backends
//
//   - transcription/openai: OpenAI audio transcriptions API
//   - transcription/whisper: faster-whisper HTTP sidecar
//
// # Usage
//
//	p, err := providers.Build(cfg)
//	client := transcription.NewClient(p, cfg, log)
//	resp, err := client.Transcribe(ctx, transcription.Request{AudioPath: path})
package transcription
