// Package httpserver provides the HTTP/HTTPS server for ghostlink.
//
// This package implements the external API using stdlib net/http:
//
//   - Linking endpoints: /pair, /qr/generate, /qr/status/{id}
//   - Maintenance endpoint: /qr/cleanup (admin token)
//   - System endpoints: /health, /status, /api, /metrics
//
// Features:
//
//   - TLS support with automatic certificate reload
//   - Middleware chain: Recover, CORS, RequestID, RateLimit, Audit
//   - Graceful shutdown with configurable timeout
//   - Prometheus metrics integration
package httpserver
