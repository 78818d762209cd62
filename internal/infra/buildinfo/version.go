package buildinfo

import (
	"fmt"
	"runtime"
)

// Stamped via ldflags; defaults are what a plain `go build` produces.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata reported by /status and --version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String renders the metadata as a single human-readable line.
func (i Info) String() string {
	return fmt.Sprintf("%s (%s) built at %s", i.Version, i.Commit, i.BuildTime)
}

// String renders the current build metadata.
func String() string {
	return Get().String()
}
