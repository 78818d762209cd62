package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rak-realm/ghostlink/internal/core/service"
)

// HandlePair handles POST /pair.
func (h *Handler) HandlePair(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, "GL-SYS-4000", "invalid request body")
		return
	}
	if req.Number == "" {
		h.writeFailure(w, http.StatusBadRequest, "GL-ARG-1002", "number is required")
		return
	}

	resp, err := h.links.Pair(r.Context(), &service.PairRequest{Number: req.Number})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, PairResponse{
		Success:   true,
		Code:      resp.Code,
		SessionID: resp.SessionID,
		Message:   "Enter this code on your device to complete linking",
	})
}
