// Package middleware provides HTTP middleware for the workspace server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the browser client
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - GlobalRateLimit: One bucket shared by every client
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
