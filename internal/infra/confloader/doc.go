// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader built on
// koanf. Sources are merged with later sources overriding earlier
// ones:
//
//  1. Configuration file (YAML)
//  2. Environment variables (GHOSTLINK_ prefix)
//
// A companion fsnotify watcher triggers reload callbacks when the
// config file changes on disk, used for runtime log-level adjustment.
package confloader
