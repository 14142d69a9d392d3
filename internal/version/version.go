// Package version holds build information, overridable with
// -ldflags "-X facettes/internal/version.Version=1.3.0 -X facettes/internal/version.Commit=abc123".
package version

import "runtime"

var (
	// Version is the semantic version of facettes
	Version = "1.2.0"

	// Commit is the git commit hash
	Commit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns a multi-line description for `facettes --version`.
func Full() string {
	return "facettes version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate + "\n" +
		"Go: " + runtime.Version()
}
