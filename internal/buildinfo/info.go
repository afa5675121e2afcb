// Package buildinfo exposes release metadata injected by the linker.
package buildinfo

// Set with -ldflags "-X github.com/vestcheck/vestcheck/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
