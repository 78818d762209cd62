// Package config defines the ghost-cli configuration file.
//
// The file holds defaults for flags the user would otherwise repeat on
// every invocation: the server address, output format, and admin
// token. Flags and GHOSTLINK_* environment variables override it.
package config
