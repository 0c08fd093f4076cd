// Package ports declares the repo-data view the resolver core consumes.
// The concrete implementation lives in internal/repodata (file-backed
// channel data); host-capability records from internal/virtualpkg are
// registered through solver.Index.AddVirtualPackage instead.
package ports

import "avular-packages/internal/types"

// RawRecord is one not-yet-parsed record as found in a repo-data view.
// Parsing is deferred: every record of a name is parsed into a
// types.PackageRecord when that name's universe is first built, and
// records of names the resolver never looks up are never parsed.
type RawRecord interface {
	Parse() (types.PackageRecord, error)
}

// RepoData exposes the universe of known records for a channel/platform
// pair, keyed by package name. Fetching, caching, and decoding repo data
// from the network is explicitly out of scope for the resolver core; this
// interface is the boundary it is supplied across.
type RepoData interface {
	Packages() map[string][]RawRecord
}
