// Package relay implements protocol.Dialer against an external
// protocol gateway.
//
// The gateway owns the real wire protocol and cryptographic handshake
// with the messaging network. This package only bridges: it opens one
// websocket per link session, hands the gateway the session's stored
// credential state, translates inbound event frames into the typed
// protocol.Event set, and correlates command frames with their result
// frames by ID.
package relay
