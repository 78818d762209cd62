package service

import (
	"context"
	"strings"

	"github.com/rak-realm/ghostlink/internal/core/domain"
)

// minNumberDigits is the minimum digit count after normalization.
const minNumberDigits = 8

// PairRequest contains parameters for the pairing-code flow.
type PairRequest struct {
	// Number is the destination phone number, in any formatting.
	Number string
}

// PairResponse contains the issued pairing code.
type PairResponse struct {
	Code      string
	SessionID string
}

// NormalizeNumber strips all non-digit characters. The result must
// still be validated for length.
func NormalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Pair runs the pairing-code linking flow: provision a session, request
// a code from the protocol network, and return it. The session then
// waits for the user to enter the code on the other device; subsequent
// socket events drive it to completion in the background.
func (s *LinkService) Pair(ctx context.Context, req *PairRequest) (*PairResponse, error) {
	// 1. Validate before any resource is created.
	number := NormalizeNumber(req.Number)
	if len(number) < minNumberDigits {
		return nil, domain.ErrInvalidNumber.WithDetails("need at least 8 digits")
	}

	// 2. Provision store + socket.
	sess, err := s.provision(ctx, domain.ModePairing)
	if err != nil {
		return nil, err
	}

	// Pump events from here on so an early open is not lost while the
	// code request is in flight.
	go sess.pump()

	// 3. Request the pairing code. On failure the session never reaches
	// AWAITING_CODE; everything provisioned is torn down synchronously.
	code, err := sess.socket.RequestPairingCode(ctx, number)
	if err != nil {
		s.failSession(sess, err)
		return nil, domain.ErrPairingCodeFailed.WithCause(err)
	}

	sess.mu.Lock()
	sess.responded = true
	if sess.entity.Status == domain.StatusCreated {
		if terr := sess.entity.Transition(domain.StatusAwaitingCode); terr != nil {
			s.logger.Warn("transition rejected", "session_id", sess.entity.ID, "error", terr)
		}
	}
	sess.mu.Unlock()

	s.metrics.PairingCodesIssued.Inc()
	s.logger.Info("pairing code issued", "session_id", sess.entity.ID)

	return &PairResponse{
		Code:      code,
		SessionID: sess.entity.ID,
	}, nil
}

// failSession moves a session to FAILED and tears its resources down
// immediately.
func (s *LinkService) failSession(sess *linkSession, cause error) {
	sess.mu.Lock()
	sess.cancelChainLocked()
	if terr := sess.entity.Transition(domain.StatusFailed); terr != nil {
		s.logger.Warn("transition rejected", "session_id", sess.entity.ID, "error", terr)
	}
	sess.cleanupReason = "failed"
	id := sess.entity.ID
	sess.mu.Unlock()

	_ = sess.socket.Close()
	s.metrics.LinkFailures.Inc()
	s.logger.Warn("link session failed", "session_id", id, "error", cause)
	s.cleaner.Schedule(id, 0)
}
