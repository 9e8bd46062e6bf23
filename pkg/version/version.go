// Package version holds build information injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/electron-inspector/electron-inspector/pkg/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"

	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"

	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// String returns a one-line summary of the build.
func String() string {
	return fmt.Sprintf("electron-inspector %s (%s, built %s, %s %s/%s)",
		Version, GitCommit, BuildDate, GoVersion, runtime.GOOS, runtime.GOARCH)
}
