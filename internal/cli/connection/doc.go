// Package connection provides the HTTP client ghost-cli uses to talk
// to a ghostlink server.
//
// The client wraps each API endpoint in a typed method and unpacks the
// server's response envelopes, surfacing the X-Error-Code header on
// failures.
package connection
