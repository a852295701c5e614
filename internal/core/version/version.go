// Package version provides information about the build version of the bot.
package version

import "strings"

// BuildInfo holds version information about the bot build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'shamewizard/internal/core/version.version=1.0.0'
	// -X 'shamewizard/internal/core/version.commit=abcd' -X 'shamewizard/internal/core/version.date=2026-10-17'"
	return BuildInfo{
		Service: "shamewizard",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Tag returns the version with a single leading "v", as used in user agents
func Tag() string { return "v" + strings.TrimPrefix(version, "v") }

var (
	version = "1.0.0"
	commit  = "none"
	date    = "unknown"
)
