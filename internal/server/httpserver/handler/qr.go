package handler

import "net/http"

// HandleQRGenerate handles GET /qr/generate. It blocks until the
// handshake produces its first QR payload or the issuance window
// elapses.
func (h *Handler) HandleQRGenerate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.links.GenerateQR(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, QRResponse{
		Success:   true,
		QR:        resp.QR,
		SessionID: resp.SessionID,
		Message:   "Scan this code with your device to complete linking",
	})
}

// HandleQRStatus handles GET /qr/status/{id}.
func (h *Handler) HandleQRStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	resp, err := h.links.QRStatus(sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, QRStatusResponse{
		Exists: resp.Exists,
		Active: resp.Active,
		Info:   resp.Info,
	})
}

// HandleQRCleanup handles POST /qr/cleanup, the bulk staleness sweep.
func (h *Handler) HandleQRCleanup(w http.ResponseWriter, r *http.Request) {
	cleaned, err := h.links.CleanupStale(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, CleanupResponse{
		Success: true,
		Cleaned: cleaned,
	})
}
