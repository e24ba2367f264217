// Package version exposes build metadata for mqttguard binaries.
package version

import "fmt"

//nolint:revive // Overridden with -ldflags "-X" at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
