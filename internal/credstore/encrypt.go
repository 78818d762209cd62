package credstore

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption errors.
var (
	ErrPassphraseTooWeak = errors.New("credstore: passphrase too weak (minimum 8 characters)")
	ErrDecryptionFailed  = errors.New("credstore: decryption failed, wrong passphrase or corrupted blob")
)

const (
	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// saltLength is the key-derivation salt length.
	saltLength = 16

	// Argon2id parameters for passphrase-based key derivation.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Cipher seals and opens credential blobs with ChaCha20-Poly1305,
// keyed from a passphrase via Argon2id.
type Cipher struct {
	passphrase []byte
	aead       cipher.AEAD
}

// init loads or creates the derivation salt and derives the key.
func (c *Cipher) init(saltPath string) error {
	if len(c.passphrase) < MinPassphraseLength {
		return ErrPassphraseTooWeak
	}

	salt, err := loadOrCreateSalt(saltPath)
	if err != nil {
		return err
	}

	key := argon2.IDKey(c.passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("credstore: cipher init: %w", err)
	}
	c.aead = aead

	// Key material derived; the passphrase itself is no longer needed.
	for i := range c.passphrase {
		c.passphrase[i] = 0
	}
	return nil
}

// Seal encrypts a credential blob. Output layout: nonce || ciphertext.
func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("credstore: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

// Open decrypts a sealed credential blob.
func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// loadOrCreateSalt reads the persisted salt, generating and persisting
// a fresh one on first use.
func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != saltLength {
			return nil, fmt.Errorf("credstore: corrupt salt file %s", path)
		}
		return salt, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("credstore: read salt: %w", err)
	}

	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("credstore: generate salt: %w", err)
	}
	if err := os.WriteFile(path, salt, fileMode); err != nil {
		return nil, fmt.Errorf("credstore: persist salt: %w", err)
	}
	return salt, nil
}
