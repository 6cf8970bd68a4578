// Package server hosts the voiceingest HTTP API on Gin behind an h2c
// handler.
//
// The middleware stack (server/middleware) wraps the whole handler:
//
//   - Recovery: panics become a 500 internal_error body
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: browser clients recording audio
//   - BodySizeLimit: caps multipart uploads
//   - RequestLogger: one structured line per request
//
// Probe endpoints live in server/endpoint: /health, /alive, /ready and
// /info.
package server
