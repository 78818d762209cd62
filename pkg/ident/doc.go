// Package ident generates and validates the identifiers used by the
// linking service.
//
// Session ID Format:
//
//   - Prefix: flow prefix plus generation, e.g. GHOST_V1 or QR_GHOST_V1
//   - Body: Unix-millisecond timestamp, 8 random alphanumerics, and a
//     zero-padded 3-digit sequence number
//   - Example: GHOST_V1_1756600000000_aZ3kQ9pX_007
//
// The embedded timestamp makes an ID self-describing: Expired reports
// whether the elapsed time since generation exceeds a timeout without
// any lookup. The per-millisecond sequence counter keeps IDs unique
// even when many are generated inside one clock tick.
//
// The package also produces short alphanumeric IDs, numeric pairing
// codes, and hex authentication tokens, all drawn from crypto/rand,
// plus SHA-256 token hashing with constant-time verification.
package ident
