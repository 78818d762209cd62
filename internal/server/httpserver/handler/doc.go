// Package handler provides HTTP request handlers for ghostlink.
//
// This package contains handlers for all HTTP endpoints:
//
//   - pair.go: Pairing-code linking
//   - qr.go: QR linking, status query, stale cleanup
//   - system.go: Health, status, and API catalog endpoints
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call the link service
//   - Format and return the response envelope
//   - Map errors to HTTP status codes by error code suffix
package handler
