// Package tlsroots provides TLS certificate management for ghostlink.
//
// This package handles TLS certificate loading and management:
//
//   - roots.go: System certificates + custom CA loading
//   - watcher.go: Certificate hot-reload via fsnotify
//
// Used for connecting to protocol gateways behind private certificate
// authorities.
package tlsroots
