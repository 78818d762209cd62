// Package config defines the server configuration structure.
package config

import (
	"errors"
	"net/url"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySessions(&cfg.Sessions); err != nil {
		return err
	}
	if err := verifyProtocol(&cfg.Protocol); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	return nil
}

func verifySessions(cfg *SessionsSection) error {
	if cfg.Dir == "" {
		return errors.New("sessions.dir is required")
	}

	// Check the sessions directory exists or can be created.
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return errors.New("cannot create sessions directory: " + err.Error())
	}

	if cfg.QRWindow <= 0 {
		return errors.New("sessions.qr_window must be positive")
	}
	if cfg.StaleAge <= 0 {
		return errors.New("sessions.stale_age must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("sessions.sweep_interval must be positive")
	}
	for _, d := range []struct {
		name string
		v    int64
	}{
		{"sessions.notify_delay", int64(cfg.NotifyDelay)},
		{"sessions.pairing_close_delay", int64(cfg.PairingCloseDelay)},
		{"sessions.pairing_cleanup_delay", int64(cfg.PairingCleanupDelay)},
		{"sessions.qr_dwell", int64(cfg.QRDwell)},
		{"sessions.qr_close_grace", int64(cfg.QRCloseGrace)},
	} {
		if d.v < 0 {
			return errors.New(d.name + " must not be negative")
		}
	}
	return nil
}

func verifyProtocol(cfg *ProtocolSection) error {
	if cfg.RelayURL == "" {
		return errors.New("protocol.relay_url is required")
	}
	u, err := url.Parse(cfg.RelayURL)
	if err != nil {
		return errors.New("protocol.relay_url is not a valid URL: " + err.Error())
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.New("protocol.relay_url must use ws or wss scheme")
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.RatePerSecond < 0 {
		return errors.New("limits.rate_per_second must not be negative")
	}
	if cfg.RatePerSecond > 0 && cfg.RateBurst < 1 {
		return errors.New("limits.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}
