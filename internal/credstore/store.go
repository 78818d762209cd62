package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rak-realm/ghostlink/internal/core/domain"
)

const (
	// credsFile holds the protocol credential blob.
	credsFile = "creds.json"

	// infoFile holds the persisted session-info record.
	infoFile = "session-info.json"

	// saltFile holds the key-derivation salt for encrypted stores.
	saltFile = ".store-salt"

	dirMode  = 0o750
	fileMode = 0o600
)

// Manager owns the sessions root directory and hands out one Store per
// session.
type Manager struct {
	root   string
	cipher *Cipher
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEncryption enables at-rest encryption of credential blobs using
// a key derived from the passphrase. The derivation salt is persisted
// in the sessions root so the same passphrase reopens existing blobs.
func WithEncryption(passphrase string) Option {
	return func(m *Manager) {
		m.cipher = &Cipher{passphrase: []byte(passphrase)}
	}
}

// NewManager creates a Manager rooted at dir, creating the directory
// if needed.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	if dir == "" {
		return nil, domain.ErrMissingArgument.WithDetails("sessions directory is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}

	m := &Manager{
		root:   dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cipher != nil {
		if err := m.cipher.init(filepath.Join(dir, saltFile)); err != nil {
			return nil, domain.ErrCredentialStore.WithCause(err)
		}
	}
	return m, nil
}

// Root returns the sessions root directory.
func (m *Manager) Root() string {
	return m.root
}

// Encrypted reports whether credential blobs are encrypted at rest.
func (m *Manager) Encrypted() bool {
	return m.cipher != nil
}

// Path returns the store directory for a session ID.
func (m *Manager) Path(sessionID string) string {
	return filepath.Join(m.root, sessionID)
}

// validID rejects session IDs that are empty or would escape the
// sessions root when used as a path component.
func validID(sessionID string) bool {
	if sessionID == "" || sessionID == "." || sessionID == ".." {
		return false
	}
	return !strings.ContainsAny(sessionID, `/\`)
}

// Create allocates the store directory for a session.
func (m *Manager) Create(sessionID string) (*Store, error) {
	if !validID(sessionID) {
		return nil, domain.ErrInvalidSessionID.WithDetails(sessionID)
	}
	path := m.Path(sessionID)
	if err := os.MkdirAll(path, dirMode); err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}
	return &Store{path: path, cipher: m.cipher}, nil
}

// Open returns the store for an existing session directory.
// exists is false when the directory is absent.
func (m *Manager) Open(sessionID string) (store *Store, exists bool, err error) {
	if !validID(sessionID) {
		return nil, false, domain.ErrInvalidSessionID.WithDetails(sessionID)
	}
	path := m.Path(sessionID)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, domain.ErrCredentialStore.WithCause(err)
	}
	if !fi.IsDir() {
		return nil, false, nil
	}
	return &Store{path: path, cipher: m.cipher}, true, nil
}

// Remove deletes a session's store directory tree. Removing an absent
// store is not an error.
func (m *Manager) Remove(sessionID string) error {
	if !validID(sessionID) {
		return domain.ErrInvalidSessionID.WithDetails(sessionID)
	}
	if err := os.RemoveAll(m.Path(sessionID)); err != nil {
		return domain.ErrCredentialStore.WithCause(err)
	}
	return nil
}

// DirInfo describes one session store directory for the sweep.
type DirInfo struct {
	SessionID string
	ModTime   time.Time
}

// List enumerates the session store directories under the root.
func (m *Manager) List() ([]DirInfo, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, domain.ErrCredentialStore.WithCause(err)
	}

	infos := make([]DirInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			// Raced with a concurrent removal.
			continue
		}
		infos = append(infos, DirInfo{SessionID: e.Name(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

// Count returns the number of session store directories.
func (m *Manager) Count() (int, error) {
	infos, err := m.List()
	if err != nil {
		return 0, err
	}
	return len(infos), nil
}

// Store is one session's credential directory.
type Store struct {
	path   string
	cipher *Cipher
}

// Path returns the store's directory.
func (s *Store) Path() string {
	return s.path
}

// Persist writes the protocol credential blob, replacing any previous
// state.
func (s *Store) Persist(state []byte) error {
	data := state
	if s.cipher != nil {
		sealed, err := s.cipher.Seal(state)
		if err != nil {
			return domain.ErrCredentialStore.WithCause(err)
		}
		data = sealed
	}
	if err := writeFileAtomic(filepath.Join(s.path, credsFile), data); err != nil {
		return domain.ErrCredentialStore.WithCause(err)
	}
	return nil
}

// State reads back the protocol credential blob. A fresh store returns
// nil state.
func (s *Store) State() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.path, credsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.ErrCredentialStore.WithCause(err)
	}
	if s.cipher != nil {
		plain, err := s.cipher.Open(data)
		if err != nil {
			return nil, domain.ErrCredentialStore.WithCause(err)
		}
		return plain, nil
	}
	return data, nil
}

// WriteInfo persists the session-info record.
func (s *Store) WriteInfo(info domain.SessionInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return domain.ErrCredentialStore.WithCause(err)
	}
	if err := writeFileAtomic(filepath.Join(s.path, infoFile), data); err != nil {
		return domain.ErrCredentialStore.WithCause(err)
	}
	return nil
}

// ReadInfo reads back the session-info record. exists is false when no
// record has been written.
func (s *Store) ReadInfo() (info *domain.SessionInfo, exists bool, err error) {
	data, err := os.ReadFile(filepath.Join(s.path, infoFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, domain.ErrCredentialStore.WithCause(err)
	}
	var rec domain.SessionInfo
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, domain.ErrCredentialStore.WithCause(err)
	}
	return &rec, true, nil
}

// writeFileAtomic writes data via a temp file and rename so a crash
// never leaves a torn blob behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
