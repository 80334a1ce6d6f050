// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The workspace controller and its providers each take a *Logger and log
// with structured fields (path, directory, operation) rather than
// formatted strings.
//
// Example Usage:
//
//	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Listing directory", zap.String("dir", "/chats/"))
//	logger.Error("Save failed", zap.String("path", p), zap.Error(err))
package logging
