package ident

import (
	"encoding/hex"
	"testing"
)

func TestHexToken(t *testing.T) {
	token, err := HexToken(DefaultTokenLength)
	if err != nil {
		t.Fatalf("HexToken: %v", err)
	}
	if len(token) != DefaultTokenLength*2 {
		t.Errorf("length = %d, want %d", len(token), DefaultTokenLength*2)
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token %q is not valid hex: %v", token, err)
	}

	other, err := HexToken(DefaultTokenLength)
	if err != nil {
		t.Fatalf("HexToken: %v", err)
	}
	if token == other {
		t.Error("two tokens should not collide")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("my-token")
	b := HashToken("my-token")
	if a != b {
		t.Error("same input should hash identically")
	}
	if a == HashToken("other-token") {
		t.Error("different inputs should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

func TestVerifyToken(t *testing.T) {
	if !VerifyToken("secret", "secret") {
		t.Error("matching tokens should verify")
	}
	if VerifyToken("secret", "other") {
		t.Error("mismatched tokens should not verify")
	}
	if VerifyToken("", "secret") {
		t.Error("empty presented token should not verify")
	}
	// Length difference must not matter to the comparison path.
	if VerifyToken("secret-but-longer", "secret") {
		t.Error("longer token should not verify")
	}
}
