package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/service"
	"github.com/rak-realm/ghostlink/internal/credstore"
	"github.com/rak-realm/ghostlink/internal/protocol"
)

// fakeSocket is a scripted relay connection. Events queued at dial
// time are delivered as soon as the session starts pumping.
type fakeSocket struct {
	events    chan protocol.Event
	closeOnce sync.Once
}

func newFakeSocket(queued ...protocol.Event) *fakeSocket {
	s := &fakeSocket{events: make(chan protocol.Event, 16)}
	for _, ev := range queued {
		s.events <- ev
	}
	return s
}

func (s *fakeSocket) Events() <-chan protocol.Event { return s.events }

func (s *fakeSocket) RequestPairingCode(ctx context.Context, number string) (string, error) {
	return "ABCD-1234", nil
}

func (s *fakeSocket) SendNotification(ctx context.Context, recipient, text string) error {
	return nil
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

type fakeDialer struct {
	queued []protocol.Event
}

func (d *fakeDialer) Dial(ctx context.Context, authState []byte) (protocol.Socket, error) {
	return newFakeSocket(d.queued...), nil
}

func testTimings() service.Timings {
	return service.Timings{
		NotifyDelay:         5 * time.Millisecond,
		PairingCloseDelay:   5 * time.Millisecond,
		PairingCleanupDelay: 20 * time.Millisecond,
		QRDwell:             20 * time.Millisecond,
		QRCloseGrace:        20 * time.Millisecond,
		QRWindow:            100 * time.Millisecond,
		StaleAge:            time.Hour,
	}
}

func newTestHandler(t *testing.T, dialer protocol.Dialer) *Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores, err := credstore.NewManager(t.TempDir(), credstore.WithLogger(logger))
	if err != nil {
		t.Fatalf("credstore.NewManager: %v", err)
	}

	svc := service.NewLinkService(service.Config{
		Stores:  stores,
		Dialer:  dialer,
		Logger:  logger,
		Timings: testTimings(),
	})
	t.Cleanup(func() { svc.Close() })

	return New(svc, logger)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHandlePairSuccess(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodPost, "/pair",
		strings.NewReader(`{"number":"+1 (555) 123-4567"}`))
	rec := httptest.NewRecorder()
	h.HandlePair(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[PairResponse](t, rec)
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.Code != "ABCD-1234" {
		t.Errorf("code = %q", resp.Code)
	}
	if !strings.HasPrefix(resp.SessionID, "GHOST_") {
		t.Errorf("sessionId = %q, want GHOST_ prefix", resp.SessionID)
	}
}

func TestHandlePairInvalidBody(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodPost, "/pair", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.HandlePair(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "GL-SYS-4000" {
		t.Errorf("X-Error-Code = %q", got)
	}
}

func TestHandlePairMissingNumber(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodPost, "/pair", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandlePair(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "GL-ARG-1002" {
		t.Errorf("X-Error-Code = %q", got)
	}
}

func TestHandlePairShortNumber(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodPost, "/pair",
		strings.NewReader(`{"number":"12345"}`))
	rec := httptest.NewRecorder()
	h.HandlePair(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "GL-PAIR-4001" {
		t.Errorf("X-Error-Code = %q", got)
	}
	resp := decodeBody[FailureResponse](t, rec)
	if resp.Success {
		t.Error("failure envelope should have success=false")
	}
}

func TestHandleQRGenerate(t *testing.T) {
	dialer := &fakeDialer{queued: []protocol.Event{
		{Kind: protocol.KindQR, QR: "2@qr-payload-one"},
	}}
	h := newTestHandler(t, dialer)

	req := httptest.NewRequest(http.MethodGet, "/qr/generate", nil)
	rec := httptest.NewRecorder()
	h.HandleQRGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[QRResponse](t, rec)
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.QR != "2@qr-payload-one" {
		t.Errorf("qr = %q", resp.QR)
	}
	if !strings.HasPrefix(resp.SessionID, "QR_GHOST_") {
		t.Errorf("sessionId = %q, want QR_GHOST_ prefix", resp.SessionID)
	}
}

func TestHandleQRGenerateTimeout(t *testing.T) {
	// No queued events: the issuance window elapses.
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodGet, "/qr/generate", nil)
	rec := httptest.NewRecorder()
	h.HandleQRGenerate(rec, req)

	if rec.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want 408", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "GL-QR-4080" {
		t.Errorf("X-Error-Code = %q", got)
	}
	resp := decodeBody[FailureResponse](t, rec)
	if resp.Success {
		t.Error("failure envelope should have success=false")
	}
}

func TestHandleQRStatusUnknown(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /qr/status/{id}", h.HandleQRStatus)

	req := httptest.NewRequest(http.MethodGet, "/qr/status/QR_GHOST_V1_0_missing_000", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[QRStatusResponse](t, rec)
	if resp.Exists || resp.Active {
		t.Errorf("unknown session reported exists=%v active=%v", resp.Exists, resp.Active)
	}
}

func TestHandleQRStatusKnown(t *testing.T) {
	dialer := &fakeDialer{queued: []protocol.Event{
		{Kind: protocol.KindQR, QR: "2@qr-payload"},
	}}
	h := newTestHandler(t, dialer)

	rec := httptest.NewRecorder()
	h.HandleQRGenerate(rec, httptest.NewRequest(http.MethodGet, "/qr/generate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	generated := decodeBody[QRResponse](t, rec)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /qr/status/{id}", h.HandleQRStatus)

	req := httptest.NewRequest(http.MethodGet, "/qr/status/"+generated.SessionID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	resp := decodeBody[QRStatusResponse](t, rec)
	if !resp.Exists {
		t.Error("freshly generated session should exist")
	}
}

func TestHandleQRCleanup(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	req := httptest.NewRequest(http.MethodPost, "/qr/cleanup", nil)
	rec := httptest.NewRecorder()
	h.HandleQRCleanup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[CleanupResponse](t, rec)
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.Cleaned != 0 {
		t.Errorf("cleaned = %d, want 0 on a fresh store", resp.Cleaned)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Service != "ghostlink" {
		t.Errorf("service = %q", resp.Service)
	}
}

func TestHandleStatus(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[StatusResponse](t, rec)
	if resp.Service != "ghostlink" {
		t.Errorf("service = %q", resp.Service)
	}
	if resp.ActiveSessions != 0 {
		t.Errorf("active = %d, want 0", resp.ActiveSessions)
	}
}

func TestHandleAPI(t *testing.T) {
	h := newTestHandler(t, &fakeDialer{})

	rec := httptest.NewRecorder()
	h.HandleAPI(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/qr/generate") {
		t.Error("catalog should list /qr/generate")
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"GL-SESS-4040", http.StatusNotFound},
		{"GL-QR-4080", http.StatusRequestTimeout},
		{"GL-SESS-4090", http.StatusConflict},
		{"GL-SYS-4290", http.StatusTooManyRequests},
		{"GL-PAIR-4001", http.StatusBadRequest},
		{"GL-SYS-4000", http.StatusBadRequest},
		{"GL-AUTH-4010", http.StatusUnauthorized},
		{"GL-AUTH-4011", http.StatusUnauthorized},
		{"GL-ARG-1001", http.StatusBadRequest},
		{"GL-PAIR-5020", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
