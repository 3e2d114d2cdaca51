package buildinfo

import "time"

// Populated via -ldflags at build time; empty in dev builds.
var (
	Version string
	Commit  string
)

// StartTime is recorded once when the process starts.
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Summary returns the build identity reported by the health endpoint.
func Summary() map[string]string {
	v := Version
	if v == "" {
		v = "dev"
	}
	return map[string]string{
		"version": v,
		"commit":  Commit,
		"started": StartTime,
	}
}
