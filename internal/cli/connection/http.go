package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one API request. The QR generate call blocks
// server-side for up to its issuance window, so this must comfortably
// exceed it.
const DefaultTimeout = 45 * time.Second

// APIError is a failure envelope returned by the server.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Client is a ghostlink API client.
type Client struct {
	baseURL    string
	adminToken string
	client     *http.Client
}

// NewClient creates a client for the given server address. A bare
// host:port gets an http:// scheme.
func NewClient(server, adminToken string, timeout time.Duration) *Client {
	baseURL := strings.TrimSuffix(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		adminToken: adminToken,
		client:     &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PairResult is the pairing-code issuance result.
type PairResult struct {
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Pair requests a pairing code for a phone number.
func (c *Client) Pair(ctx context.Context, number string) (*PairResult, error) {
	var result PairResult
	if err := c.do(ctx, http.MethodPost, "/pair", map[string]string{"number": number}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QRResult is the QR issuance result.
type QRResult struct {
	QR        string `json:"qr"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// GenerateQR requests a QR linking payload. The call blocks until the
// server surfaces the first payload or its issuance window elapses.
func (c *Client) GenerateQR(ctx context.Context) (*QRResult, error) {
	var result QRResult
	if err := c.do(ctx, http.MethodGet, "/qr/generate", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SessionInfo mirrors the server's persisted session-info record.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Identity  string    `json:"identity"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
}

// QRStatusResult is the QR session status.
type QRStatusResult struct {
	Exists bool         `json:"exists"`
	Active bool         `json:"active"`
	Info   *SessionInfo `json:"info,omitempty"`
}

// QRStatus queries a QR session by ID.
func (c *Client) QRStatus(ctx context.Context, sessionID string) (*QRStatusResult, error) {
	var result QRStatusResult
	if err := c.do(ctx, http.MethodGet, "/qr/status/"+sessionID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cleanup triggers the stale-store sweep and returns how many stores
// were removed. Requires the admin token when the server has one set.
func (c *Client) Cleanup(ctx context.Context) (int, error) {
	var result struct {
		Cleaned int `json:"cleaned"`
	}
	if err := c.do(ctx, http.MethodPost, "/qr/cleanup", nil, &result); err != nil {
		return 0, err
	}
	return result.Cleaned, nil
}

// HealthResult is the server liveness report.
type HealthResult struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	var result HealthResult
	if err := c.do(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StatusResult is the server operational summary.
type StatusResult struct {
	Service         string `json:"service"`
	Version         string `json:"version"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	ActiveSessions  int    `json:"active_sessions"`
	StoredSessions  int    `json:"stored_sessions"`
	PendingCleanups int    `json:"pending_cleanups"`
}

// Status fetches the server operational summary.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var result StatusResult
	if err := c.do(ctx, http.MethodGet, "/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs one request and decodes the response into target.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var bodyReader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if bodyReader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}
	req.Header.Set("User-Agent", "ghost-cli/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Code:   resp.Header.Get("X-Error-Code"),
			Status: resp.StatusCode,
		}
		var envelope struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			apiErr.Message = envelope.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
