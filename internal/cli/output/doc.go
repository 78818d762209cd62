// Package output provides output formatting for ghost-cli.
//
// Command results render as a table by default; --output switches to
// JSON or YAML. The spinner animates long-running waits such as QR
// payload generation.
package output
