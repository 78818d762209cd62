// Package protocol defines the socket capability the linking flows consume.
package protocol

import "context"

// EventKind discriminates the closed set of socket events.
type EventKind int

// Socket event kinds.
const (
	// KindQR carries a fresh QR payload from the handshake. The
	// protocol may re-issue refreshed payloads on the same socket.
	KindQR EventKind = iota + 1

	// KindOpened signals the connection established; Identity carries
	// the linked account identity.
	KindOpened

	// KindClosed signals the connection closed. It is always the last
	// event a socket emits before its event channel closes, except
	// when the protocol layer re-opens the connection afterwards.
	KindClosed

	// KindCredentials carries updated credential material that must be
	// persisted to the session's credential store.
	KindCredentials
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case KindQR:
		return "qr"
	case KindOpened:
		return "opened"
	case KindClosed:
		return "closed"
	case KindCredentials:
		return "credentials"
	default:
		return "unknown"
	}
}

// Event is one asynchronous occurrence on a protocol socket.
type Event struct {
	Kind EventKind

	// QR is the scannable payload, set when Kind is KindQR.
	QR string

	// Identity is the linked account identity, set when Kind is
	// KindOpened.
	Identity string

	// Credentials is opaque credential material, set when Kind is
	// KindCredentials.
	Credentials []byte
}

// Socket is one live protocol connection bound to a single link
// session.
//
// Events delivers the socket's event stream in arrival order; the
// channel closes when the connection is torn down. Commands may be
// called from any goroutine.
type Socket interface {
	// Events returns the socket's event stream.
	Events() <-chan Event

	// RequestPairingCode asks the network to issue a pairing code for
	// the given destination number.
	RequestPairingCode(ctx context.Context, number string) (string, error)

	// SendNotification delivers a text notification to a recipient on
	// the linked account.
	SendNotification(ctx context.Context, recipient, text string) error

	// Close requests a graceful connection shutdown. Closing an
	// already-closed socket is not an error.
	Close() error
}

// Dialer opens protocol sockets.
//
// authState is the credential material from the session's store; nil
// means a fresh, unauthenticated handshake.
type Dialer interface {
	Dial(ctx context.Context, authState []byte) (Socket, error)
}
