package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the server certificate fresh by reloading the key pair
// whenever the files change on disk. Lets cert rotation happen without
// a restart.
type Watcher struct {
	certPath string
	keyPath  string
	logger   *slog.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate

	reloadMu   sync.Mutex
	lastReload time.Time

	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger used for reload events.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets the minimum interval between reloads. Editors and
// provisioning tools often touch the files more than once per rotation.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher loads the key pair once and returns a watcher for it.
// The initial load must succeed; a server should not start without a
// working certificate.
func NewWatcher(certPath, keyPath string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   slog.Default(),
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial certificate load: %w", err)
	}
	return w, nil
}

// Start watches the certificate files until Stop is called. It watches the
// parent directories rather than the files themselves so atomic-rename
// updates (kubernetes secret mounts, certbot) are still seen.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create fs watcher: %w", err)
	}

	certDir := filepath.Dir(w.certPath)
	if err := fsw.Add(certDir); err != nil {
		fsw.Close()
		return fmt.Errorf("tlsroots: watch %s: %w", certDir, err)
	}
	if keyDir := filepath.Dir(w.keyPath); keyDir != certDir {
		if err := fsw.Add(keyDir); err != nil {
			fsw.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", keyDir, err)
		}
	}

	w.logger.Info("certificate watcher started",
		"cert", w.certPath,
		"key", w.keyPath,
	)

	certName := filepath.Base(w.certPath)
	keyName := filepath.Base(w.keyPath)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if name != certName && name != keyName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.debouncedReload(); err != nil {
				// Keep serving the previous certificate on a bad reload.
				w.logger.Error("certificate reload failed",
					"error", err,
					"cert", w.certPath,
				)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("certificate watcher error", "error", err)

		case <-w.done:
			return fsw.Close()
		}
	}
}

// StartAsync runs Start in a goroutine.
func (w *Watcher) StartAsync() {
	go func() {
		if err := w.Start(); err != nil {
			w.logger.Error("certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	close(w.done)
}

// GetCertificate returns the current key pair. Plugs into
// tls.Config.GetCertificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

func (w *Watcher) debouncedReload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(w.lastReload) < w.debounce {
		return nil
	}
	w.lastReload = now

	// Give the writer a moment to finish both files.
	time.Sleep(100 * time.Millisecond)

	return w.reload()
}

func (w *Watcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certPath, w.keyPath)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	w.mu.Lock()
	w.cert = &cert
	w.mu.Unlock()

	w.logger.Info("certificate reloaded", "cert", w.certPath)
	return nil
}
