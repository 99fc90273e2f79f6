// Package buildinfo holds release metadata injected via ldflags.
package buildinfo

// These values are set by the release pipeline; they stay empty for
// local/dev builds, where runtime/debug build info takes over.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
