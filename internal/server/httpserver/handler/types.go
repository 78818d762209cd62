package handler

import "github.com/rak-realm/ghostlink/internal/core/domain"

// PairRequest is the request body for POST /pair.
type PairRequest struct {
	Number string `json:"number"`
}

// PairResponse is the success envelope for POST /pair.
type PairResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// QRResponse is the success envelope for GET /qr/generate.
type QRResponse struct {
	Success   bool   `json:"success"`
	QR        string `json:"qr"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// QRStatusResponse is the response body for GET /qr/status/{id}.
type QRStatusResponse struct {
	Exists bool                `json:"exists"`
	Active bool                `json:"active"`
	Info   *domain.SessionInfo `json:"info,omitempty"`
}

// CleanupResponse is the response body for POST /qr/cleanup.
type CleanupResponse struct {
	Success bool `json:"success"`
	Cleaned int  `json:"cleaned"`
}

// FailureResponse is the failure envelope shared by all endpoints.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Time          string `json:"time"`
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Service         string `json:"service"`
	Version         string `json:"version"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	ActiveSessions  int    `json:"active_sessions"`
	StoredSessions  int    `json:"stored_sessions"`
	PendingCleanups int    `json:"pending_cleanups"`
}
