// Package config provides 12-factor configuration for the workspace server.
//
// Configuration is loaded from environment variables with defaults suitable
// for local development. CLI flags in cmd/server override the port.
//
// Configuration Sections:
//   - Server: HTTP listen address
//   - Storage: SQLite DSN of the entry store
//   - Seed: where the client sources seeded into /js/ are fetched from
//   - Export: directory that receives exported sources
//   - Model: chat-completions endpoint used by sessions
//   - Locale: collation language for tree sorting
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//
// Environment Variables:
//   - PORT, HOST, STORAGE_DSN, SEED_BASE_URL, SEED_DIR, EXPORT_DIR
//   - MODEL_ENDPOINT, MODEL_TIMEOUT, MODEL_RPS, LOCALE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
