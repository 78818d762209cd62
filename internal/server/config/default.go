// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:3000"

	DefaultSessionsDir   = "./sessions"
	DefaultSweepInterval = 15 * time.Minute

	DefaultRelayURL = "ws://127.0.0.1:3100/socket"

	DefaultRatePerSecond = 5.0
	DefaultRateBurst     = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Sessions: SessionsSection{
			Dir:                 DefaultSessionsDir,
			NotifyDelay:         1500 * time.Millisecond,
			PairingCloseDelay:   2 * time.Second,
			PairingCleanupDelay: 5 * time.Second,
			QRDwell:             10 * time.Second,
			QRCloseGrace:        30 * time.Second,
			QRWindow:            30 * time.Second,
			StaleAge:            time.Hour,
			SweepInterval:       DefaultSweepInterval,
		},
		Protocol: ProtocolSection{
			RelayURL: DefaultRelayURL,
		},
		Limits: LimitsSection{
			RatePerSecond: DefaultRatePerSecond,
			RateBurst:     DefaultRateBurst,
			CORSOrigin:    "*",
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
