package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/domain"
	"github.com/rak-realm/ghostlink/internal/core/service"
)

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	links   *service.LinkService
	logger  *slog.Logger
	started time.Time
}

// New creates a new Handler over the link service.
func New(links *service.LinkService, logger *slog.Logger) *Handler {
	return &Handler{
		links:   links,
		logger:  logger,
		started: time.Now(),
	}
}

// writeJSON writes a JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeFailure writes a failure envelope. The machine-readable error
// code travels in the X-Error-Code header; the body keeps the
// original envelope shape.
func (h *Handler) writeFailure(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(FailureResponse{
		Success: false,
		Message: message,
	})
}

// handleServiceError converts service errors to failure envelopes.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		h.writeFailure(w, errorCodeToHTTPStatus(code), code, err.Error())
		return
	}
	h.logger.Error("internal error", "error", err)
	h.writeFailure(w, http.StatusInternalServerError, "GL-SYS-5000", "internal server error")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes by code
// suffix.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4080"):
		return http.StatusRequestTimeout
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "GL-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
