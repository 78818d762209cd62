package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcherLoadsInitialCert(t *testing.T) {
	certPath, keyPath := writeServerKeyPair(t, t.TempDir())

	w, err := NewWatcher(certPath, keyPath)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cert, err := w.GetCertificate(nil)
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if cert == nil {
		t.Fatal("GetCertificate() returned nil after initial load")
	}
}

func TestNewWatcherRejectsBrokenCert(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	os.WriteFile(certPath, []byte("junk"), 0o644)
	os.WriteFile(keyPath, []byte("junk"), 0o600)

	if _, err := NewWatcher(certPath, keyPath); err == nil {
		t.Error("NewWatcher() expected error for unparsable key pair")
	}
}

func TestNewWatcherRejectsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWatcher(filepath.Join(dir, "no.crt"), filepath.Join(dir, "no.key"))
	if err == nil {
		t.Error("NewWatcher() expected error for missing files")
	}
}

func TestWatcherOptions(t *testing.T) {
	certPath, keyPath := writeServerKeyPair(t, t.TempDir())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := NewWatcher(certPath, keyPath,
		WithLogger(log),
		WithDebounce(200*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != log {
		t.Error("WithLogger() not applied")
	}
	if w.debounce != 200*time.Millisecond {
		t.Errorf("debounce = %v, want 200ms", w.debounce)
	}
}

func TestWatcherStartStop(t *testing.T) {
	certPath, keyPath := writeServerKeyPair(t, t.TempDir())

	w, err := NewWatcher(certPath, keyPath,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	w.StartAsync()
	time.Sleep(50 * time.Millisecond)
	w.Stop()
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := writeServerKeyPair(t, dir)

	w, err := NewWatcher(certPath, keyPath,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithDebounce(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	before, _ := w.GetCertificate(nil)

	w.StartAsync()
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	// Rotate the key pair in place.
	writeServerKeyPair(t, dir)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		after, _ := w.GetCertificate(nil)
		if after != before {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("certificate was not reloaded after rotation")
}

func TestWatcherServesWithTLSConfig(t *testing.T) {
	certPath, keyPath := writeServerKeyPair(t, t.TempDir())

	w, err := NewWatcher(certPath, keyPath)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cfg := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: w.GetCertificate,
	}
	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if cert == nil {
		t.Error("GetCertificate() returned nil")
	}
}

// writeServerKeyPair writes a fresh self-signed server certificate and key
// into dir and returns their paths.
func writeServerKeyPair(t *testing.T, dir string) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	serial, _ := rand.Int(rand.Reader, big.NewInt(1<<32))
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}

	certPath = filepath.Join(dir, "server.crt")
	keyPath = filepath.Join(dir, "server.key")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		t.Fatal(err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	return certPath, keyPath
}
