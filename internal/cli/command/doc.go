// Package command provides CLI command definitions for ghost-cli.
//
// It uses urfave/cli/v2 for command parsing. Commands cover the two
// linking flows (pairing code and QR) plus server maintenance: the
// stale-store sweep, health checks, and the status summary.
package command
