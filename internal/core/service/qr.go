package service

import (
	"context"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/domain"
)

// QRResponse contains the first QR payload produced by the handshake.
type QRResponse struct {
	QR        string
	SessionID string
}

// GenerateQR runs the QR linking flow: provision a session and block
// until the handshake produces its first QR payload or the issuance
// window elapses. On timeout the session is expired and cleaned up.
func (s *LinkService) GenerateQR(ctx context.Context) (*QRResponse, error) {
	sess, err := s.provision(ctx, domain.ModeQR)
	if err != nil {
		return nil, err
	}
	go sess.pump()

	timer := time.NewTimer(s.timings.QRWindow)
	defer timer.Stop()

	select {
	case qr := <-sess.qrResult:
		return &QRResponse{QR: qr, SessionID: sess.entity.ID}, nil

	case <-timer.C:
		return nil, s.expireSession(sess)

	case <-ctx.Done():
		s.expireOrIgnore(sess)
		return nil, domain.ErrInternalServer.WithCause(ctx.Err())
	}
}

// expireSession handles the QR issuance window elapsing. A payload that
// raced in just before the timer fired is dropped: the caller takes the
// timeout branch either way, so nobody would ever scan it.
func (s *LinkService) expireSession(sess *linkSession) error {
	sess.mu.Lock()
	if sess.responded {
		select {
		case <-sess.qrResult:
		default:
		}
	}
	sess.responded = true
	sess.cancelChainLocked()
	if terr := sess.entity.Transition(domain.StatusExpired); terr != nil {
		s.logger.Warn("transition rejected", "session_id", sess.entity.ID, "error", terr)
	}
	sess.cleanupReason = "expired"
	id := sess.entity.ID
	sess.mu.Unlock()

	_ = sess.socket.Close()
	s.metrics.LinkTimeouts.Inc()
	s.logger.Warn("qr issuance window elapsed", "session_id", id)
	s.cleaner.Schedule(id, 0)
	return domain.ErrQRTimeout
}

// expireOrIgnore tears a session down when the caller abandoned the
// wait. A session whose payload was actually delivered keeps running;
// an undelivered payload still sitting in the channel expires with it.
func (s *LinkService) expireOrIgnore(sess *linkSession) {
	sess.mu.Lock()
	abandoned := !sess.responded || len(sess.qrResult) > 0
	sess.mu.Unlock()
	if abandoned {
		_ = s.expireSession(sess)
	}
}

// QRStatusResponse reports a session's on-disk footprint. Active means
// the link completed and wrote its session-info artifact.
type QRStatusResponse struct {
	Exists bool
	Active bool
	Info   *domain.SessionInfo
}

// QRStatus reports whether the session's credential store exists and
// whether the link completed. It never consults live protocol state.
func (s *LinkService) QRStatus(sessionID string) (*QRStatusResponse, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("session_id is required")
	}

	store, exists, err := s.stores.Open(sessionID)
	if err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}
	if !exists {
		return &QRStatusResponse{}, nil
	}

	info, hasInfo, err := store.ReadInfo()
	if err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}
	return &QRStatusResponse{
		Exists: true,
		Active: hasInfo,
		Info:   info,
	}, nil
}

// CleanupStale force-removes every credential store older than the
// staleness threshold, judged by directory modification time. Live
// sessions have recent stores and are untouched; the sweep tolerates
// running concurrently with them.
func (s *LinkService) CleanupStale(ctx context.Context) (int, error) {
	dirs, err := s.stores.List()
	if err != nil {
		return 0, domain.ErrCredentialStore.WithCause(err)
	}

	cleaned := 0
	now := time.Now()
	for _, d := range dirs {
		select {
		case <-ctx.Done():
			return cleaned, ctx.Err()
		default:
		}
		age := now.Sub(d.ModTime)
		if age <= s.timings.StaleAge {
			continue
		}
		s.cleaner.Cancel(d.SessionID)
		if err := s.stores.Remove(d.SessionID); err != nil {
			s.logger.Warn("stale store removal failed", "session_id", d.SessionID, "error", err)
			continue
		}
		if sess := s.lookup(d.SessionID); sess != nil {
			sess.setCleanupReason("stale")
			s.unregister(d.SessionID)
		} else {
			s.metrics.SessionsCleaned.WithLabelValues("stale").Inc()
		}
		s.logger.Info("stale session removed", "session_id", d.SessionID, "age", age.String())
		cleaned++
	}
	return cleaned, nil
}
