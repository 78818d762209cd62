// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for ghost-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Sessions SessionsSection `koanf:"sessions"`
	Protocol ProtocolSection `koanf:"protocol"`
	Security SecuritySection `koanf:"security"`
	Limits   LimitsSection   `koanf:"limits"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// SessionsSection configures session storage and lifecycle timing.
type SessionsSection struct {
	// Dir is the root directory for per-session credential stores.
	Dir string `koanf:"dir"`

	// NotifyDelay is the pause between link completion and the welcome
	// notification.
	NotifyDelay time.Duration `koanf:"notify_delay"`

	// PairingCloseDelay is the pause between the notification and the
	// socket close request.
	PairingCloseDelay time.Duration `koanf:"pairing_close_delay"`

	// PairingCleanupDelay is the fallback cleanup delay for pairing
	// sessions.
	PairingCleanupDelay time.Duration `koanf:"pairing_cleanup_delay"`

	// QRDwell is how long a connected QR session stays open.
	QRDwell time.Duration `koanf:"qr_dwell"`

	// QRCloseGrace is the post-close cleanup grace for QR sessions.
	QRCloseGrace time.Duration `koanf:"qr_close_grace"`

	// QRWindow bounds the wait for the first QR payload.
	QRWindow time.Duration `koanf:"qr_window"`

	// StaleAge is the bulk sweep staleness threshold.
	StaleAge time.Duration `koanf:"stale_age"`

	// SweepInterval is how often the background sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ProtocolSection configures the protocol gateway connection.
type ProtocolSection struct {
	// RelayURL is the websocket URL of the protocol gateway.
	RelayURL string `koanf:"relay_url"`

	// TLSCAFile is an optional CA bundle for wss gateways with private
	// certificate authorities.
	TLSCAFile string `koanf:"tls_ca_file"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// AdminToken guards the cleanup endpoint when set. Stored as the
	// plain token; compared in constant time.
	AdminToken string `koanf:"admin_token"`

	// EncryptionPassphrase enables at-rest encryption of credential
	// blobs when set.
	EncryptionPassphrase string `koanf:"encryption_passphrase"`
}

// LimitsSection configures request limits.
type LimitsSection struct {
	// RatePerSecond is the per-client sustained request rate. Zero
	// disables rate limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// RateBurst is the per-client burst allowance.
	RateBurst int `koanf:"rate_burst"`

	// CORSOrigin is the allowed origin for browser clients. "*" allows
	// any origin; empty disables CORS headers.
	CORSOrigin string `koanf:"cors_origin"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
