// Package credstore manages per-session on-disk credential material.
//
// Every link session owns one directory under the sessions root,
// created, read, and deleted as a unit. A directory holds the opaque
// credential blob the protocol socket needs to resume its connection
// (optionally encrypted at rest) and, once a QR link completes, the
// session-info record the status query reads back.
//
// Removal is idempotent: deleting an absent directory is not an
// error. Directory modification time is the store's age for the bulk
// staleness sweep.
package credstore
