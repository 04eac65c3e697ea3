// Package version carries build information stamped in with -ldflags -X.
package version //nolint:revive // package name intentionally matches build-info convention

import (
	"fmt"
	"runtime"
)

//nolint:gochecknoglobals //version information is set at build time
var (
	Repository string
	Version    string
	Commit     string
	Date       string
)

// Get returns the stamped version, or "dev" for unstamped builds.
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

func String() string {
	s := fmt.Sprintf("langsync %s", Get())
	if Commit != "" {
		s += fmt.Sprintf(" (commit %s", Commit)
		if Date != "" {
			s += ", built " + Date
		}
		s += ")"
	}
	if Repository != "" {
		s += " " + Repository
	}
	return s + " " + runtime.Version()
}
