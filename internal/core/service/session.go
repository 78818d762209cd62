package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/domain"
	"github.com/rak-realm/ghostlink/internal/credstore"
	"github.com/rak-realm/ghostlink/internal/protocol"
	"github.com/rak-realm/ghostlink/internal/telemetry/metric"
	"github.com/rak-realm/ghostlink/pkg/ident"
)

// Session identifier prefixes by flow.
const (
	PairingPrefix = "GHOST"
	QRPrefix      = "QR_GHOST"
)

// Timings holds every delay the lifecycle uses. Tests shrink these to
// milliseconds.
type Timings struct {
	// NotifyDelay is the pause between the connection opening and the
	// welcome notification.
	NotifyDelay time.Duration

	// PairingCloseDelay is the pause between the welcome notification
	// and the socket close request.
	PairingCloseDelay time.Duration

	// PairingCleanupDelay is the fallback cleanup delay after a pairing
	// session requests its own close.
	PairingCleanupDelay time.Duration

	// QRDwell is how long a connected QR session stays open before the
	// close request.
	QRDwell time.Duration

	// QRCloseGrace is the cleanup delay after a QR session closes,
	// tolerating transient protocol reconnects.
	QRCloseGrace time.Duration

	// QRWindow bounds how long a caller waits for the first QR payload.
	QRWindow time.Duration

	// StaleAge is the bulk sweep's staleness threshold.
	StaleAge time.Duration
}

// DefaultTimings returns the production delays.
func DefaultTimings() Timings {
	return Timings{
		NotifyDelay:         1500 * time.Millisecond,
		PairingCloseDelay:   2 * time.Second,
		PairingCleanupDelay: 5 * time.Second,
		QRDwell:             10 * time.Second,
		QRCloseGrace:        30 * time.Second,
		QRWindow:            30 * time.Second,
		StaleAge:            time.Hour,
	}
}

// Config assembles a LinkService's collaborators.
type Config struct {
	Stores  *credstore.Manager
	Dialer  protocol.Dialer
	Metrics *metric.Metrics
	Logger  *slog.Logger
	Timings Timings
}

// LinkService orchestrates both linking flows and owns the registry of
// in-flight sessions.
type LinkService struct {
	stores  *credstore.Manager
	dialer  protocol.Dialer
	metrics *metric.Metrics
	logger  *slog.Logger
	timings Timings

	ids   *ident.Generator
	qrIDs *ident.Generator

	cleaner *CleanupScheduler

	mu       sync.Mutex
	sessions map[string]*linkSession
	closed   bool
}

// NewLinkService creates a LinkService.
func NewLinkService(cfg Config) *LinkService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.New()
	}
	timings := cfg.Timings
	if timings == (Timings{}) {
		timings = DefaultTimings()
	}

	s := &LinkService{
		stores:   cfg.Stores,
		dialer:   cfg.Dialer,
		metrics:  metrics,
		logger:   logger,
		timings:  timings,
		ids:      ident.New(PairingPrefix),
		qrIDs:    ident.New(QRPrefix),
		cleaner:  NewCleanupScheduler(cfg.Stores, logger),
		sessions: make(map[string]*linkSession),
	}
	s.cleaner.OnDone(s.unregister)
	return s
}

// Scheduler exposes the cleanup scheduler, used by the shutdown path.
func (s *LinkService) Scheduler() *CleanupScheduler {
	return s.cleaner
}

// Active returns the number of registered in-flight sessions.
func (s *LinkService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stats is an operational snapshot for the status endpoint.
type Stats struct {
	ActiveSessions  int `json:"active_sessions"`
	StoredSessions  int `json:"stored_sessions"`
	PendingCleanups int `json:"pending_cleanups"`
}

// Stats reports the current session counts.
func (s *LinkService) Stats() Stats {
	stored, err := s.stores.Count()
	if err != nil {
		s.logger.Warn("store count failed", "error", err)
	}
	return Stats{
		ActiveSessions:  s.Active(),
		StoredSessions:  stored,
		PendingCleanups: s.cleaner.Pending(),
	}
}

// Close tears down all live sessions and stops the scheduler. Pending
// credential stores are removed synchronously; removal failures are
// aggregated into the returned error.
func (s *LinkService) Close() error {
	s.mu.Lock()
	s.closed = true
	live := make([]*linkSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.sessions = make(map[string]*linkSession)
	s.mu.Unlock()

	s.cleaner.Stop()
	var errs []error
	for _, sess := range live {
		sess.shutdown()
		if err := s.stores.Remove(sess.entity.ID); err != nil {
			s.logger.Warn("store removal on shutdown failed",
				"session_id", sess.entity.ID, "error", err)
			errs = append(errs, fmt.Errorf("remove store %s: %w", sess.entity.ID, err))
		}
		s.metrics.SessionsActive.WithLabelValues(string(sess.entity.Mode)).Dec()
	}
	return errors.Join(errs...)
}

func (s *LinkService) register(sess *linkSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrInternalServer.WithDetails("service shutting down")
	}
	s.sessions[sess.entity.ID] = sess
	s.metrics.SessionsActive.WithLabelValues(string(sess.entity.Mode)).Inc()
	return nil
}

func (s *LinkService) unregister(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.shutdown()
	// The cleaned counter ticks here, after the store is actually gone,
	// so canceled grace-window cleanups never count.
	if reason := sess.takeCleanupReason(); reason != "" {
		s.metrics.SessionsCleaned.WithLabelValues(reason).Inc()
	}
	s.metrics.SessionsActive.WithLabelValues(string(sess.entity.Mode)).Dec()
}

func (s *LinkService) lookup(sessionID string) *linkSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID]
}

// provision allocates a session entity, its credential store, and its
// protocol socket. On any failure everything created so far is torn
// down before the error is returned.
func (s *LinkService) provision(ctx context.Context, mode domain.Mode) (*linkSession, error) {
	gen := s.ids
	if mode == domain.ModeQR {
		gen = s.qrIDs
	}
	id, err := gen.SessionID()
	if err != nil {
		return nil, domain.ErrInternalServer.WithCause(err)
	}

	store, err := s.stores.Create(id)
	if err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}

	authState, err := store.State()
	if err != nil {
		s.removeStore(id)
		return nil, domain.ErrCredentialStore.WithCause(err)
	}

	socket, err := s.dialer.Dial(ctx, authState)
	if err != nil {
		s.removeStore(id)
		return nil, domain.ErrSocketDial.WithCause(err)
	}

	sess := &linkSession{
		svc:      s,
		entity:   domain.NewLinkSession(id, mode, store.Path()),
		socket:   socket,
		store:    store,
		qrResult: make(chan string, 1),
	}
	if err := s.register(sess); err != nil {
		_ = socket.Close()
		s.removeStore(id)
		return nil, err
	}
	return sess, nil
}

func (s *LinkService) removeStore(sessionID string) {
	if err := s.stores.Remove(sessionID); err != nil {
		s.logger.Warn("store removal failed", "session_id", sessionID, "error", err)
	}
}

// linkSession binds one credential store to one protocol socket and
// holds the per-session state machine. All mutation happens under mu,
// driven by socket events.
type linkSession struct {
	svc *LinkService

	mu        sync.Mutex
	entity    *domain.LinkSession
	socket    protocol.Socket
	store     *credstore.Store
	responded bool
	notified  bool

	// cleanupReason labels the pending cleanup for the cleaned counter,
	// consumed only once the removal actually completes.
	cleanupReason string

	// qrResult delivers the first QR payload to the waiting caller.
	qrResult chan string

	// chainCancel aborts the running side-effect chain, if any.
	chainCancel context.CancelFunc
}

// pump drains socket events until the event channel closes.
func (ls *linkSession) pump() {
	for ev := range ls.socket.Events() {
		ls.handle(ev)
	}
}

// handle dispatches one socket event through the state machine.
func (ls *linkSession) handle(ev protocol.Event) {
	switch ev.Kind {
	case protocol.KindQR:
		ls.handleQR(ev.QR)
	case protocol.KindOpened:
		ls.handleOpened(ev.Identity)
	case protocol.KindClosed:
		ls.handleClosed()
	case protocol.KindCredentials:
		ls.handleCredentials(ev.Credentials)
	default:
		ls.svc.logger.Warn("unknown socket event", "session_id", ls.entity.ID, "kind", int(ev.Kind))
	}
}

// handleQR surfaces the first QR payload. The protocol may re-issue
// refreshed payloads on the same socket; only the first one is
// delivered to the caller.
func (ls *linkSession) handleQR(qr string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.entity.Mode != domain.ModeQR || ls.responded {
		return
	}
	ls.responded = true
	if err := ls.entity.Transition(domain.StatusQRIssued); err != nil {
		ls.svc.logger.Warn("transition rejected", "session_id", ls.entity.ID, "error", err)
		return
	}
	ls.qrResult <- qr
	ls.svc.metrics.QRCodesIssued.Inc()
	ls.svc.logger.Info("qr issued", "session_id", ls.entity.ID)
}

// handleOpened moves the session to CONNECTED and starts the flow's
// side-effect chain. An open arriving inside a QR close-grace window
// cancels the pending cleanup and relinks the same session.
func (ls *linkSession) handleOpened(identity string) {
	ls.mu.Lock()

	if ls.entity.Status == domain.StatusClosed {
		if ls.svc.cleaner.Cancel(ls.entity.ID) {
			ls.svc.logger.Info("reconnect during grace window, cleanup canceled",
				"session_id", ls.entity.ID)
		}
	}
	ls.cancelChainLocked()

	ls.entity.Identity = identity
	if err := ls.entity.Transition(domain.StatusConnecting); err != nil {
		ls.mu.Unlock()
		ls.svc.logger.Warn("transition rejected", "session_id", ls.entity.ID, "error", err)
		return
	}
	if err := ls.entity.Transition(domain.StatusConnected); err != nil {
		ls.mu.Unlock()
		ls.svc.logger.Warn("transition rejected", "session_id", ls.entity.ID, "error", err)
		return
	}

	mode := ls.entity.Mode
	id := ls.entity.ID
	ctx, cancel := context.WithCancel(context.Background())
	ls.chainCancel = cancel
	ls.mu.Unlock()

	ls.svc.logger.Info("link connected", "session_id", id, "identity", identity, "mode", string(mode))

	switch mode {
	case domain.ModePairing:
		go ls.runChain(ctx, []step{
			{ls.svc.timings.NotifyDelay, ls.sendWelcome},
			{ls.svc.timings.PairingCloseDelay, ls.requestClose},
		}, func() {
			// Fallback in case the close event never arrives.
			ls.setCleanupReason("terminal")
			ls.svc.cleaner.Schedule(id, ls.svc.timings.PairingCleanupDelay)
		})
	case domain.ModeQR:
		ls.writeSessionInfo(identity)
		go ls.runChain(ctx, []step{
			{ls.svc.timings.NotifyDelay, ls.sendWelcome},
			{ls.svc.timings.QRDwell, ls.requestClose},
		}, nil)
	}
}

// handleClosed is the terminal close transition. Pairing sessions clean
// up immediately; QR sessions wait out a grace window first.
func (ls *linkSession) handleClosed() {
	ls.mu.Lock()
	ls.cancelChainLocked()
	if ls.entity.Status.Terminal() && ls.entity.Status != domain.StatusClosed {
		ls.mu.Unlock()
		return
	}
	if err := ls.entity.Transition(domain.StatusClosed); err != nil {
		ls.mu.Unlock()
		ls.svc.logger.Warn("transition rejected", "session_id", ls.entity.ID, "error", err)
		return
	}
	ls.cleanupReason = "terminal"
	mode := ls.entity.Mode
	id := ls.entity.ID
	ls.mu.Unlock()

	delay := time.Duration(0)
	if mode == domain.ModeQR {
		delay = ls.svc.timings.QRCloseGrace
	}
	ls.svc.logger.Info("link closed", "session_id", id, "cleanup_in", delay.String())
	ls.svc.cleaner.Schedule(id, delay)
}

// handleCredentials persists updated credential material. Persistence
// failure is logged, never fatal to the link.
func (ls *linkSession) handleCredentials(creds []byte) {
	if err := ls.store.Persist(creds); err != nil {
		ls.svc.logger.Error("credential persist failed", "session_id", ls.entity.ID, "error", err)
	}
}

// step is one unit of a terminal side-effect chain: wait, then act.
type step struct {
	delay time.Duration
	run   func()
}

// runChain executes steps in program order, each preceded by its delay.
// Cancellation aborts the remainder of the chain as a unit.
func (ls *linkSession) runChain(ctx context.Context, steps []step, after func()) {
	for _, st := range steps {
		timer := time.NewTimer(st.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		st.run()
	}
	if after != nil {
		after()
	}
}

func (ls *linkSession) cancelChainLocked() {
	if ls.chainCancel != nil {
		ls.chainCancel()
		ls.chainCancel = nil
	}
}

func (ls *linkSession) setCleanupReason(reason string) {
	ls.mu.Lock()
	ls.cleanupReason = reason
	ls.mu.Unlock()
}

func (ls *linkSession) takeCleanupReason() string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	reason := ls.cleanupReason
	ls.cleanupReason = ""
	return reason
}

// sendWelcome delivers the one welcome notification, best-effort.
func (ls *linkSession) sendWelcome() {
	ls.mu.Lock()
	if ls.notified {
		ls.mu.Unlock()
		return
	}
	ls.notified = true
	identity := ls.entity.Identity
	id := ls.entity.ID
	ls.mu.Unlock()

	text := fmt.Sprintf("Device linked successfully.\nSession: %s\nConnected at: %s",
		id, time.Now().Format(time.RFC3339))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ls.socket.SendNotification(ctx, identity, text); err != nil {
		ls.svc.logger.Warn("welcome notification failed", "session_id", id, "error", err)
		return
	}
	ls.svc.logger.Info("welcome notification sent", "session_id", id)
}

// requestClose asks the protocol layer to shut the connection down.
func (ls *linkSession) requestClose() {
	if err := ls.socket.Close(); err != nil {
		ls.svc.logger.Warn("socket close failed", "session_id", ls.entity.ID, "error", err)
	}
}

// writeSessionInfo persists the session-info artifact the status query
// reads back.
func (ls *linkSession) writeSessionInfo(identity string) {
	info := domain.SessionInfo{
		SessionID: ls.entity.ID,
		Identity:  identity,
		Timestamp: time.Now(),
		Mode:      ls.entity.Mode,
	}
	if err := ls.store.WriteInfo(info); err != nil {
		ls.svc.logger.Error("session info write failed", "session_id", ls.entity.ID, "error", err)
	}
}

// shutdown cancels the chain and closes the socket. Idempotent.
func (ls *linkSession) shutdown() {
	ls.mu.Lock()
	ls.cancelChainLocked()
	ls.mu.Unlock()
	_ = ls.socket.Close()
}
