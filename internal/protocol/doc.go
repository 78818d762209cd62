// Package protocol defines the socket capability the linking flows
// consume.
//
// The messaging network's wire protocol and cryptographic handshake
// live outside this service. A flow sees a connection only as a
// Socket: a closed set of typed events (QR issued, opened, closed,
// credentials updated) plus three commands (request pairing code,
// send notification, close). Exactly one Socket is bound to a link
// session for its entire lifetime and is never reused.
//
// The relay subpackage provides the production Dialer, which bridges
// to an external protocol gateway over a websocket.
package protocol
