// Package logger provides structured, leveled logging backed by zerolog.
//
// Loggers are injected into components rather than reached through globals;
// the package-level functions exist for middleware that has no owner to
// receive a logger from.
//
//	log := logger.New(&cfg, "voiceingest").WithComponent("pipeline")
//	log.Info("transcription recorded", logger.Fields("user_id", id, "used", n))
package logger
