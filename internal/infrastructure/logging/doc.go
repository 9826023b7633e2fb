// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: sampled JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that command-line tool output on stdout
// stays machine readable. Every entry carries a "service" field.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	sb, _ := filesystem.New(root, filesystem.WithLogger(logger.Named("sandbox")))
package logging
