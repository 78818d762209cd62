// Package domain defines the core domain models for the linking service.
package domain

import "time"

// Mode identifies which linking flow owns a session.
type Mode string

// Linking flow modes.
const (
	ModePairing Mode = "pairing"
	ModeQR      Mode = "qr"
)

// Status is the lifecycle state of a LinkSession.
type Status string

// Session lifecycle states.
const (
	// StatusCreated is the initial state after allocation.
	StatusCreated Status = "created"

	// StatusAwaitingCode means a pairing code has been issued and the
	// service is waiting for the user to enter it on another device.
	StatusAwaitingCode Status = "awaiting_code"

	// StatusQRIssued means the first QR payload has been surfaced to
	// the caller.
	StatusQRIssued Status = "qr_issued"

	// StatusConnecting means the protocol connection opened and the
	// link is being established.
	StatusConnecting Status = "connecting"

	// StatusConnected means the device link completed.
	StatusConnected Status = "connected"

	// StatusClosed is terminal: the protocol connection closed.
	StatusClosed Status = "closed"

	// StatusExpired is terminal: no QR payload arrived in time.
	StatusExpired Status = "expired"

	// StatusFailed is terminal: provisioning or code issuance failed.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status is an end state. All terminal
// states converge on the same idempotent cleanup action.
func (s Status) Terminal() bool {
	switch s {
	case StatusClosed, StatusExpired, StatusFailed:
		return true
	}
	return false
}

// transitions encodes the legal status graph. A close event may arrive
// in any non-terminal state, so every live state admits StatusClosed.
var transitions = map[Status][]Status{
	StatusCreated:      {StatusAwaitingCode, StatusQRIssued, StatusConnecting, StatusClosed, StatusExpired, StatusFailed},
	StatusAwaitingCode: {StatusConnecting, StatusClosed, StatusFailed},
	StatusQRIssued:     {StatusConnecting, StatusClosed, StatusExpired},
	StatusConnecting:   {StatusConnected, StatusClosed},
	StatusConnected:    {StatusClosed},
	// A protocol reconnect during the close grace window re-enters
	// CONNECTING and cancels the pending cleanup.
	StatusClosed: {StatusConnecting},
}

// CanTransition reports whether moving from one status to another is
// legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LinkSession represents one attempt to link an external device to an
// account, via pairing code or QR code.
type LinkSession struct {
	// ID is the opaque unique session identifier, immutable.
	ID string `json:"id"`

	// Mode is the owning flow.
	Mode Mode `json:"mode"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// CredentialPath is the session's credential store directory,
	// owned exclusively by this session until cleanup.
	CredentialPath string `json:"credential_path"`

	// Identity is the linked account identity, set once the protocol
	// connection opens.
	Identity string `json:"identity,omitempty"`

	// CreatedAt is the session creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// NewLinkSession creates a LinkSession in StatusCreated.
func NewLinkSession(id string, mode Mode, credentialPath string) *LinkSession {
	return &LinkSession{
		ID:             id,
		Mode:           mode,
		Status:         StatusCreated,
		CredentialPath: credentialPath,
		CreatedAt:      time.Now(),
	}
}

// Transition moves the session to a new status, enforcing the legal
// status graph. Transitioning to the current status is a no-op.
func (s *LinkSession) Transition(to Status) error {
	if s.Status == to {
		return nil
	}
	if !CanTransition(s.Status, to) {
		return ErrIllegalTransition.WithDetails(string(s.Status) + " -> " + string(to))
	}
	s.Status = to
	return nil
}

// SessionInfo is the record persisted into the credential store once a
// QR link completes. The status query reads it back verbatim.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Identity  string    `json:"identity"`
	Timestamp time.Time `json:"timestamp"`
	Mode      Mode      `json:"mode"`
}
