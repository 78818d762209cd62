// Package main provides the entry point for ghost-cli.
//
// The CLI tool provides command-line access to a ghost-server for:
//
//   - Pairing-code linking (pair --number)
//   - QR linking (qr generate, qr status)
//   - Server maintenance (system health, system status, system cleanup)
//
// Usage:
//
//	ghost-cli [command] [flags]
//	ghost-cli pair --number 15551234567
//	ghost-cli qr generate --output json
//	ghost-cli system cleanup --admin-token <token>
//
// Defaults for the server address, output format, and admin token can
// be stored in ~/.ghostlink/cli.yaml.
package main
