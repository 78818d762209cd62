package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when PEM data holds no CERTIFICATE blocks.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool holds the root CAs trusted when dialing a relay gateway.
type Pool struct {
	roots *x509.CertPool
}

// NewPool returns a pool seeded with the system roots. On platforms
// without an accessible system store the pool starts empty.
func NewPool() *Pool {
	roots, err := x509.SystemCertPool()
	if err != nil {
		roots = x509.NewCertPool()
	}
	return &Pool{roots: roots}
}

// NewEmptyPool returns a pool that trusts nothing until CAs are added.
// Used when the gateway sits behind a private CA and the system roots
// must not apply.
func NewEmptyPool() *Pool {
	return &Pool{roots: x509.NewCertPool()}
}

// AddCertFile loads every certificate from a PEM bundle on disk.
func (p *Pool) AddCertFile(path string) error {
	pemData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read CA bundle %s: %w", path, err)
	}
	return p.AddCertPEM(pemData)
}

// AddCertPEM adds every CERTIFICATE block found in pemData. Non-certificate
// blocks are skipped; a bundle with no certificates at all is an error.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse CA certificate: %w", err)
		}
		p.roots.AddCert(cert)
		added++
	}
	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Roots exposes the underlying x509 pool.
func (p *Pool) Roots() *x509.CertPool {
	return p.roots
}

// TLSConfig builds a client TLS config trusting this pool.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.roots,
		MinVersion: tls.VersionTLS12,
	}
}
