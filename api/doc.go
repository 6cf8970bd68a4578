// Package api exposes the transcription pipeline and the usage ledger over
// HTTP:
//
//	POST /api/stt/transcribe   multipart upload, returns the transcript
//	GET  /api/stt/usage        today's usage for an identity
package api
