// Package middleware provides the gin middleware stack of the API server.
//
//   - CORS: cross-origin access through gin-contrib/cors
//   - RateLimit: per-IP token buckets with idle client eviction
//   - RequestID: X-Request-ID propagation with ULID ids
//   - Logger: one zap line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.Logger(log))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
