// Package testutil holds fixtures shared by package tests: synthetic WAV
// audio, multipart upload requests, a scriptable stand-in for the
// transcoder executable and a scriptable transcription provider.
package testutil
