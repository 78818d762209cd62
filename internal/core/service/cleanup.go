package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rak-realm/ghostlink/internal/credstore"
)

// CleanupScheduler executes deferred, idempotent removal of credential
// stores. Scheduling a cleanup for a session cancels any previously
// scheduled cleanup for the same session, so only the most recent
// decision wins.
type CleanupScheduler struct {
	stores *credstore.Manager
	logger *slog.Logger

	// onDone is invoked after a store has been removed, outside the
	// scheduler lock. Used by the service to unregister the session.
	onDone func(sessionID string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewCleanupScheduler creates a CleanupScheduler over the given store
// manager.
func NewCleanupScheduler(stores *credstore.Manager, logger *slog.Logger) *CleanupScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupScheduler{
		stores: stores,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// OnDone registers a callback invoked after each completed cleanup.
// Must be set before the first Schedule call.
func (c *CleanupScheduler) OnDone(fn func(sessionID string)) {
	c.onDone = fn
}

// Schedule arranges removal of the session's credential store after
// delay. A previously scheduled cleanup for the same session is
// canceled first. Removal is fire-and-forget and never blocks the
// caller.
func (c *CleanupScheduler) Schedule(sessionID string, delay time.Duration) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if prev, ok := c.timers[sessionID]; ok {
		prev.Stop()
	}
	c.timers[sessionID] = time.AfterFunc(delay, func() {
		c.fire(sessionID)
	})
	c.mu.Unlock()
}

// Cancel stops a pending cleanup for the session. It reports whether a
// cleanup was pending.
func (c *CleanupScheduler) Cancel(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.timers[sessionID]
	if !ok {
		return false
	}
	delete(c.timers, sessionID)
	return t.Stop()
}

func (c *CleanupScheduler) fire(sessionID string) {
	c.mu.Lock()
	delete(c.timers, sessionID)
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return
	}

	// Absence of the directory is not an error.
	if err := c.stores.Remove(sessionID); err != nil {
		c.logger.Error("cleanup failed", "session_id", sessionID, "error", err)
		return
	}
	c.logger.Debug("credential store removed", "session_id", sessionID)

	if c.onDone != nil {
		c.onDone(sessionID)
	}
}

// Stop cancels all pending cleanups. Fired cleanups already in flight
// may still complete.
func (c *CleanupScheduler) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

// Pending returns the number of cleanups currently scheduled.
func (c *CleanupScheduler) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
