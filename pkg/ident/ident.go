package ident

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPrefix is the default session ID prefix.
	DefaultPrefix = "GHOST"

	// Generation is the ID format generation marker.
	Generation = "V1"

	// RandomLength is the length of the random segment in a session ID.
	RandomLength = 8

	// SequenceModulus bounds the per-millisecond sequence counter.
	SequenceModulus = 1000

	// DefaultSessionTimeout is the default expiry window derived from
	// the timestamp embedded in a session ID.
	DefaultSessionTimeout = 30 * time.Minute
)

// alphanumerics is the alphabet for random ID segments.
const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// sessionIDPattern matches a structured session ID with any prefix.
// Prefix segments are uppercase; the generation marker anchors the
// timestamp, random, and sequence segments behind it.
var sessionIDPattern = regexp.MustCompile(`^[A-Z][A-Z_]*_` + Generation + `_(\d+)_[A-Za-z0-9]{8}_\d{3}$`)

// Generator produces session identifiers for one flow prefix.
//
// The generator is stateless except for the per-millisecond monotonic
// sequence counter, which resets whenever the clock tick changes and
// wraps modulo SequenceModulus. It is safe for concurrent use.
type Generator struct {
	prefix string

	mu         sync.Mutex
	lastMillis int64
	seq        int
}

// New creates a Generator for the given prefix.
// An empty prefix falls back to DefaultPrefix.
func New(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix}
}

// Prefix returns the generator's session ID prefix.
func (g *Generator) Prefix() string {
	return g.prefix
}

// SessionID generates a unique structured session identifier.
func (g *Generator) SessionID() (string, error) {
	random, err := RandomString(RandomLength)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	now := time.Now().UnixMilli()
	if now != g.lastMillis {
		g.seq = 0
		g.lastMillis = now
	}
	g.seq = (g.seq + 1) % SequenceModulus
	seq := g.seq
	g.mu.Unlock()

	return fmt.Sprintf("%s_%s_%d_%s_%03d", g.prefix, Generation, now, random, seq), nil
}

// Batch generates count session identifiers.
func (g *Generator) Batch(count int) ([]string, error) {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.SessionID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate reports whether id matches the generator's ID format,
// including its prefix.
func (g *Generator) Validate(id string) bool {
	if !strings.HasPrefix(id, g.prefix+"_"+Generation+"_") {
		return false
	}
	return Validate(id)
}

// Validate reports whether id matches the structured session ID format
// for any prefix.
func Validate(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Timestamp extracts the generation time embedded in a session ID.
// ok is false if the ID does not match the structured format.
func Timestamp(id string) (t time.Time, ok bool) {
	m := sessionIDPattern.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// Expired reports whether the time elapsed since the ID's embedded
// timestamp exceeds timeout. Malformed IDs are treated as expired.
// A non-positive timeout falls back to DefaultSessionTimeout.
func Expired(id string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	t, ok := Timestamp(id)
	if !ok {
		return true
	}
	return time.Since(t) > timeout
}

// RandomString generates a random alphanumeric string of length n.
func RandomString(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = alphanumerics[int(b)%len(alphanumerics)]
	}
	return string(out), nil
}

// NumericCode generates a random numeric code of length n digits.
func NumericCode(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = '0' + b%10
	}
	return string(out), nil
}
