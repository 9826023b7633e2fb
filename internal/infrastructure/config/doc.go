// Package config provides 12-factor configuration management for the
// sandbox service.
//
// Configuration is loaded from environment variables with sensible defaults,
// optionally seeded from a dotenv file. CLI flags can override individual
// values for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Sandbox: sandbox root directory and read ceiling
//   - Logging: Log level and output format
//   - RateLimit: global rate limiting
//   - CORS: allowed origins
//
// Example Usage:
//
//	cfg, err := config.LoadEnvFile(".env")
//	fmt.Printf("Serving %s on %s\n", cfg.Sandbox.Dir, cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - SANDBOX_DIR, SANDBOX_MAX_READ_BYTES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ALLOW_ORIGINS
package config
