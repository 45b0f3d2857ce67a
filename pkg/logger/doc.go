// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// # Basic Usage
//
//	log := logger.New(logger.Config{Level: "debug", Format: "text"})
//
// Config carries env tags, so it can be loaded with the config package:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg) // LOG_LEVEL, LOG_FORMAT
//
// # Context Extractors
//
// A [ContextExtractor] turns a context value into a log attribute. It runs on
// every record logged with a *Context method:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor())
//	log.InfoContext(r.Context(), "handled") // includes request_id
//
// [WithExtractors] applies the same decoration to any slog.Handler.
//
// # Sentry
//
// [NewWithSentry] fans records out to the base handler and to Sentry.
// Errors become Sentry issues; warnings and errors are stored as Sentry
// logs. An empty DSN keeps the base handler only, so the same wiring works
// in development.
package logger
