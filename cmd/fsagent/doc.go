// Package main is the entry point for fsagent, a filesystem tool service
// confined to a single sandbox directory.
//
// Without -tool it serves the HTTP tool API; with -tool it runs one call and
// prints the result.
//
// Configuration:
//   - Environment variables (12-factor), optionally from a dotenv file
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve the tool API
//	./fsagent -port 8000 -sandbox ./test_folder
//
//	# One-shot call
//	./fsagent -tool filesystem.list_dir -args '{"path":".","max_depth":3}'
//	./fsagent -tool filesystem.stat -args '{"path":"notes.txt"}' -output yaml
//
//	# Development mode (colored logs, debug level)
//	./fsagent -dev
//
// Logs go to stderr so one-shot results on stdout stay machine readable.
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
