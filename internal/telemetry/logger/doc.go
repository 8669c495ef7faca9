// Package logger provides structured logging for projsnap.
//
// Logger wraps log/slog with a JSON or text handler, a process-wide level
// that can change at runtime (SetLevel) and request-scoped helpers:
//
//	log, _ := logger.New(logger.Config{Level: "info", Service: "projsnap-server"})
//	logger.SetDefault(log)
//	logger.L(ctx).Info("snapshot created", "id", id)
//
// File contents never reach the output: a "content" attribute is replaced
// by its length, and secret-like keys are masked.
package logger
