// Package main is the entry point for the workspace server.
//
// The server keeps a small virtual filesystem of client sources, chat
// sessions and agent configurations in SQLite, and drives a browser client
// over REST and a WebSocket stream.
//
//	Browser → REST (/state, /entries, /send, ...) → Controller → SQLite
//	        ← WebSocket (/stream) ← view updates
//
// Configuration:
//   - Environment variables (PORT, STORAGE_DSN, SEED_DIR, MODEL_ENDPOINT, ...)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -db workspace.db
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
