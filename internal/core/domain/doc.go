// Package domain defines the core domain models for the linking
// service.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - LinkSession: one device-linking attempt and its lifecycle status
//   - SessionInfo: the persisted record of a completed link
//   - Errors: domain-specific error definitions
//
// A LinkSession is mutated only by its owning flow's event handlers;
// the legal status transitions are encoded here so the service layer
// cannot drive a session through an impossible path.
package domain
