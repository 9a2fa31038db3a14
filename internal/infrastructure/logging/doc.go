// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Domain packages take a *zap.Logger (nil means discard); the server hands
// each one a named child via Component.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Close()
//	mgr := registry.NewManager(registry.Options{Logger: logger.Component("registry")})
package logging
