// Package main is the entry point of the bundle registry server.
//
// The server installs module manifests (JSON, YAML or TOML), aggregates them
// per bundle, and answers projection and intent queries over HTTP.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Seed manifests and persist snapshots
//	./server -port 8000 -manifests ./apps -persist -store ./data/bundles
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
