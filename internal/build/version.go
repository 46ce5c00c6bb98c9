// Package build provides version and build information for decg.
// This package intentionally has no dependencies on other internal packages
// to avoid import cycles.
package build

import (
	"fmt"
	"runtime"
)

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the multi-line build description printed by `decg --version`.
func Info() string {
	return fmt.Sprintf("%s\ncommit: %s\nbuilt: %s\ngo: %s\nplatform: %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
