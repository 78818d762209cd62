package handler

import (
	"net/http"
	"time"

	"github.com/rak-realm/ghostlink/internal/infra/buildinfo"
)

const serviceName = "ghostlink"

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Service:       serviceName,
		Version:       buildinfo.Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Time:          time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleStatus handles GET /status, the operational summary.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.links.Stats()
	h.writeJSON(w, http.StatusOK, StatusResponse{
		Service:         serviceName,
		Version:         buildinfo.Version,
		UptimeSeconds:   int64(time.Since(h.started).Seconds()),
		ActiveSessions:  stats.ActiveSessions,
		StoredSessions:  stats.StoredSessions,
		PendingCleanups: stats.PendingCleanups,
	})
}

// HandleAPI handles GET /api, the endpoint catalog.
func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": buildinfo.Version,
		"endpoints": []map[string]string{
			{"method": "POST", "path": "/pair", "description": "Request a pairing code for a phone number"},
			{"method": "GET", "path": "/qr/generate", "description": "Generate a QR linking payload"},
			{"method": "GET", "path": "/qr/status/{id}", "description": "Query a QR session's status"},
			{"method": "POST", "path": "/qr/cleanup", "description": "Remove stale session stores"},
			{"method": "GET", "path": "/health", "description": "Liveness check"},
			{"method": "GET", "path": "/status", "description": "Operational summary"},
			{"method": "GET", "path": "/metrics", "description": "Prometheus metrics"},
		},
	})
}
