// Package version holds build metadata set through ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/mdx2md/internal/version.Version=v1.0.0"
package version

import (
	"fmt"
	"runtime"
)

// Version is the application version.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by `mdx2md version`.
func String() string {
	return fmt.Sprintf("mdx2md %s (commit %s, built %s, %s/%s)", Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}
