// Package errors defines the error taxonomy of the transcription pipeline.
//
// Every failure that reaches a client is an *AppError carrying a stable,
// machine-readable code, the HTTP status it maps to, and optional details
// that are flattened into the JSON body.
package errors
