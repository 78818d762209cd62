// Package logger provides structured logging for the linking service.
//
// It wraps the standard library log/slog to provide structured JSON
// logging with automatic redaction of credential material and session
// identifiers.
//
// Features:
//   - JSON structured logging (default) or text output
//   - Partial masking of session IDs (GHOST_/QR_GHOST_ prefixed values)
//   - Full redaction of keys that suggest secrets or credentials
//   - Dynamic log level adjustment at runtime
package logger
