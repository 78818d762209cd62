package ident

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSessionIDFormat(t *testing.T) {
	g := New("GHOST")
	id, err := g.SessionID()
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}

	if !strings.HasPrefix(id, "GHOST_V1_") {
		t.Errorf("id = %q, want GHOST_V1_ prefix", id)
	}
	parts := strings.Split(id, "_")
	if len(parts) != 5 {
		t.Fatalf("id %q has %d segments, want 5", id, len(parts))
	}
	if len(parts[3]) != RandomLength {
		t.Errorf("random segment %q length = %d, want %d", parts[3], len(parts[3]), RandomLength)
	}
	if len(parts[4]) != 3 {
		t.Errorf("sequence segment %q length = %d, want 3", parts[4], len(parts[4]))
	}
}

func TestSessionIDMultiSegmentPrefix(t *testing.T) {
	g := New("QR_GHOST")
	id, err := g.SessionID()
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if !strings.HasPrefix(id, "QR_GHOST_V1_") {
		t.Errorf("id = %q, want QR_GHOST_V1_ prefix", id)
	}
	if !Validate(id) {
		t.Errorf("generated id %q should validate", id)
	}
}

func TestEmptyPrefixFallsBack(t *testing.T) {
	g := New("")
	if g.Prefix() != DefaultPrefix {
		t.Errorf("Prefix() = %q, want %q", g.Prefix(), DefaultPrefix)
	}
}

func TestSessionIDsUnique(t *testing.T) {
	g := New("GHOST")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := g.SessionID()
		if err != nil {
			t.Fatalf("SessionID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSessionIDConcurrent(t *testing.T) {
	g := New("GHOST")
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id, err := g.SessionID()
				if err != nil {
					t.Errorf("SessionID: %v", err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestBatch(t *testing.T) {
	g := New("GHOST")
	ids, err := g.Batch(10)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(ids) != 10 {
		t.Fatalf("Batch returned %d ids", len(ids))
	}
	for _, id := range ids {
		if !g.Validate(id) {
			t.Errorf("batch id %q should validate", id)
		}
	}
}

func TestGeneratorValidateChecksPrefix(t *testing.T) {
	pairing := New("GHOST")
	qr := New("QR_GHOST")

	id, err := qr.SessionID()
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if pairing.Validate(id) {
		t.Errorf("pairing generator accepted QR id %q", id)
	}
	if !qr.Validate(id) {
		t.Errorf("qr generator rejected its own id %q", id)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"GHOST_V1_1700000000000_ab12cd34_001", true},
		{"QR_GHOST_V1_1700000000000_ab12cd34_042", true},
		{"", false},
		{"GHOST", false},
		{"GHOST_V1_notamillis_ab12cd34_001", false},
		{"GHOST_V1_1700000000000_short_001", false},
		{"GHOST_V1_1700000000000_ab12cd34_1", false},
		{"ghost_V1_1700000000000_ab12cd34_001", false},
		{"GHOST_V2_1700000000000_ab12cd34_001", false},
		{"GHOST_V1_1700000000000_ab12cd34_001_extra", false},
	}

	for _, tt := range tests {
		if got := Validate(tt.id); got != tt.want {
			t.Errorf("Validate(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	now := time.Now().UnixMilli()
	id := fmt.Sprintf("GHOST_V1_%d_ab12cd34_001", now)

	ts, ok := Timestamp(id)
	if !ok {
		t.Fatal("Timestamp should parse a valid id")
	}
	if ts.UnixMilli() != now {
		t.Errorf("timestamp = %d, want %d", ts.UnixMilli(), now)
	}

	if _, ok := Timestamp("garbage"); ok {
		t.Error("Timestamp should reject a malformed id")
	}
}

func TestExpired(t *testing.T) {
	fresh := fmt.Sprintf("GHOST_V1_%d_ab12cd34_001", time.Now().UnixMilli())
	stale := fmt.Sprintf("GHOST_V1_%d_ab12cd34_001", time.Now().Add(-time.Hour).UnixMilli())

	if Expired(fresh, 30*time.Minute) {
		t.Error("fresh id reported expired")
	}
	if !Expired(stale, 30*time.Minute) {
		t.Error("hour-old id should be expired with a 30m window")
	}
	if !Expired("garbage", time.Minute) {
		t.Error("malformed id should be treated as expired")
	}
	// Non-positive timeout falls back to the default window.
	if Expired(fresh, 0) {
		t.Error("fresh id expired under the default window")
	}
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(16)
	if err != nil {
		t.Fatalf("RandomString: %v", err)
	}
	if len(s) != 16 {
		t.Errorf("length = %d", len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(alphanumerics, c) {
			t.Errorf("unexpected character %q", c)
		}
	}
}

func TestNumericCode(t *testing.T) {
	code, err := NumericCode(6)
	if err != nil {
		t.Fatalf("NumericCode: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("length = %d", len(code))
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Errorf("non-digit %q in code %q", c, code)
		}
	}
}
