package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/rak-realm/ghostlink/internal/protocol"
)

// DefaultCommandTimeout bounds how long a command waits for its result
// frame when the caller's context has no earlier deadline.
const DefaultCommandTimeout = 30 * time.Second

// Dialer opens relay-backed protocol sockets.
type Dialer struct {
	// URL is the gateway websocket endpoint.
	URL string

	// HTTPClient is used for the websocket handshake. nil means
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger for connection-level diagnostics. nil means slog.Default.
	Logger *slog.Logger
}

// Dial opens one gateway connection, sends the auth frame with the
// session's stored credential state, and returns the live socket.
func (d *Dialer) Dial(ctx context.Context, authState []byte) (protocol.Socket, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := websocket.Dial(ctx, d.URL, &websocket.DialOptions{
		HTTPClient: d.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("relay dial %s: %w", d.URL, err)
	}

	auth, err := json.Marshal(frame{Type: frameAuth, Creds: authState})
	if err != nil {
		conn.Close(websocket.StatusInternalError, "auth encode failed")
		return nil, fmt.Errorf("relay auth frame: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, auth); err != nil {
		conn.Close(websocket.StatusAbnormalClosure, "auth write failed")
		return nil, fmt.Errorf("relay auth write: %w", err)
	}

	s := &socket{
		conn:    conn,
		logger:  logger,
		events:  make(chan protocol.Event, 8),
		pending: make(map[string]chan frame),
	}
	go s.readLoop()
	return s, nil
}

// socket is one relay connection implementing protocol.Socket.
type socket struct {
	conn   *websocket.Conn
	logger *slog.Logger
	events chan protocol.Event

	mu      sync.Mutex
	pending map[string]chan frame
	closed  bool

	closeOnce sync.Once
}

// Events returns the socket's event stream. The channel closes when
// the relay connection ends.
func (s *socket) Events() <-chan protocol.Event {
	return s.events
}

// readLoop decodes inbound frames until the connection ends, routing
// event frames to the event stream and result frames to their waiting
// command.
func (s *socket) readLoop() {
	defer func() {
		s.failPending(errors.New("relay connection closed"))
		close(s.events)
	}()

	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				s.logger.Debug("relay read ended", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Warn("relay frame decode failed", "error", err)
			continue
		}

		switch f.Type {
		case frameEvent:
			if f.Event != nil {
				s.dispatchEvent(*f.Event)
			}
		case frameResult:
			s.deliverResult(f)
		default:
			s.logger.Warn("relay unexpected frame type", "frame_type", f.Type)
		}
	}
}

// dispatchEvent maps a wire event onto the typed event set.
func (s *socket) dispatchEvent(body eventBody) {
	var ev protocol.Event
	switch body.Kind {
	case wireQR:
		ev = protocol.Event{Kind: protocol.KindQR, QR: body.QR}
	case wireOpen:
		ev = protocol.Event{Kind: protocol.KindOpened, Identity: body.Identity}
	case wireClose:
		ev = protocol.Event{Kind: protocol.KindClosed}
	case wireCredentials:
		ev = protocol.Event{Kind: protocol.KindCredentials, Credentials: body.Credentials}
	default:
		s.logger.Warn("relay unknown event kind", "kind", body.Kind)
		return
	}
	s.events <- ev
}

// deliverResult hands a result frame to the command waiting on its ID.
func (s *socket) deliverResult(f frame) {
	s.mu.Lock()
	ch, ok := s.pending[f.ID]
	if ok {
		delete(s.pending, f.ID)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("relay orphan result", "id", f.ID)
		return
	}
	ch <- f
}

// failPending releases every in-flight command with an error result.
func (s *socket) failPending(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.pending {
		ch <- frame{Type: frameResult, ID: id, Error: err.Error()}
		delete(s.pending, id)
	}
	s.closed = true
}

// command sends one command frame and waits for its correlated result.
func (s *socket) command(ctx context.Context, name string, args any) (frame, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return frame{}, fmt.Errorf("relay %s args: %w", name, err)
	}

	id := uuid.NewString()
	ch := make(chan frame, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return frame{}, errors.New("relay connection closed")
	}
	s.pending[id] = ch
	s.mu.Unlock()

	cmd, err := json.Marshal(frame{Type: frameCommand, ID: id, Name: name, Args: raw})
	if err != nil {
		s.forget(id)
		return frame{}, fmt.Errorf("relay %s frame: %w", name, err)
	}
	if err := s.conn.Write(ctx, websocket.MessageText, cmd); err != nil {
		s.forget(id)
		return frame{}, fmt.Errorf("relay %s write: %w", name, err)
	}

	select {
	case res := <-ch:
		if res.Error != "" {
			return frame{}, fmt.Errorf("relay %s: %s", name, res.Error)
		}
		return res, nil
	case <-ctx.Done():
		s.forget(id)
		return frame{}, ctx.Err()
	}
}

// forget drops a pending command registration.
func (s *socket) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// RequestPairingCode implements protocol.Socket.
func (s *socket) RequestPairingCode(ctx context.Context, number string) (string, error) {
	res, err := s.command(ctx, cmdPairingCode, pairingCodeArgs{Number: number})
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// SendNotification implements protocol.Socket.
func (s *socket) SendNotification(ctx context.Context, recipient, text string) error {
	_, err := s.command(ctx, cmdNotify, notifyArgs{Recipient: recipient, Text: text})
	return err
}

// Close asks the gateway to shut the protocol connection down, then
// closes the websocket. Safe to call more than once.
func (s *socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// Best effort: the gateway close may already be in flight.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, cerr := s.command(ctx, cmdClose, struct{}{}); cerr != nil {
			s.logger.Debug("relay close command failed", "error", cerr)
		}
		err = s.conn.Close(websocket.StatusNormalClosure, "session done")
	})
	return err
}
