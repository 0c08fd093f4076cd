// Package types holds the package record shared by the resolver core.
// The repo-data ports it consumes live in internal/ports and the lock
// file shape it produces in internal/lockfile.
package types

import "avular-packages/internal/pkgversion"

// PackageRecord is the canonical description of one installable variant.
// Depends and Constrains are kept as raw match-spec strings; the universe
// parses them lazily and memoizes the result.
type PackageRecord struct {
	Name          string
	Version       pkgversion.Version
	Build         string
	BuildNumber   int
	Depends       []string
	Constrains    []string
	TrackFeatures []string
	Timestamp     int64

	// Pass-through fields. They do not influence resolution.
	Channel  string
	Subdir   string
	Filename string
	MD5      string
	SHA256   string
}

// HasTrackedFeatures reports whether this variant carries any tracked
// feature tag, which marks it as dispreferred by the ordering policy.
func (r PackageRecord) HasTrackedFeatures() bool {
	return len(r.TrackFeatures) > 0
}
