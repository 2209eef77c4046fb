package config

import "fmt"

// Name is the binary name reported by -version and the MCP server.
const Name = "apichat"

// Version information (set via -ldflags during build).
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetFullVersion returns name and version with build info.
func GetFullVersion() string {
	return fmt.Sprintf("%s %s (build: %s, commit: %s)", Name, Version, Build, GitCommit)
}
