// Package service implements the link session lifecycle.
//
// A LinkService owns a registry of in-flight link sessions. Each
// session binds one credential store directory to one protocol socket
// and runs as an independent state machine driven by socket events.
// Terminal states converge on the CleanupScheduler, which removes the
// credential store after a per-flow delay.
package service
