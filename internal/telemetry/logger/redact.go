package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// sensitiveKeys are attribute key substrings whose values are fully
// replaced in log output.
var sensitiveKeys = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"credential",
	"api_key",
	"apikey",
	"authorization",
	"auth_state",
}

// maskedPrefixes are value prefixes indicating a session identifier.
// Identifiers are shown partially so operators can correlate log lines
// without the full value leaking into aggregators.
var maskedPrefixes = []string{
	"QR_GHOST_",
	"GHOST_",
}

const redactedPlaceholder = "[REDACTED]"

// redactSensitive rewrites attributes whose key suggests a secret and
// partially masks session identifier values.
func redactSensitive(a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, redactedPlaceholder)
		}
	}

	if a.Value.Kind() == slog.KindString {
		if masked, ok := maskValue(a.Value.String()); ok {
			return slog.String(a.Key, masked)
		}
	}
	return a
}

// maskValue truncates session identifiers, keeping the prefix and the
// timestamp segment visible.
func maskValue(v string) (string, bool) {
	for _, p := range maskedPrefixes {
		if strings.HasPrefix(v, p) {
			rest := strings.TrimPrefix(v, p)
			parts := strings.Split(rest, "_")
			if len(parts) < 2 {
				return p + "***", true
			}
			// Keep version and timestamp, mask random and sequence parts.
			return fmt.Sprintf("%s%s_%s_***", p, parts[0], parts[1]), true
		}
	}
	return "", false
}
