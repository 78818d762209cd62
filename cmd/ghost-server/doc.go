// Package main provides the entry point for ghost-server.
//
// The server exposes the device-linking HTTP API:
//
//   - Pairing-code flow: POST /pair issues a code the user enters on
//     the device being linked
//   - QR flow: GET /qr/generate holds the request until the protocol
//     handshake surfaces its first QR payload
//   - Maintenance: POST /qr/cleanup sweeps stale credential stores
//
// Usage:
//
//	ghost-server [flags]
//	ghost-server --config /path/to/config.yaml
//
// The server loads configuration from file and GHOSTLINK_* environment
// variables, connects each link session to the protocol gateway over a
// websocket, and persists per-session credential material on disk.
package main
