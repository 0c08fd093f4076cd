// Package lockfile implements the lock file codec (component F): the
// on-disk YAML representation of a solve result, specified as an
// external interface in spec.md §6.
package lockfile

// Kind discriminates a locked package's ecosystem.
type Kind string

const (
	KindConda Kind = "conda"
	KindPip   Kind = "pip"
)

// MaxVersion is the highest lock file format version this codec
// understands (spec.md §6: "version: <u32 <= 2>").
const MaxVersion = 2

// Metadata carries solve provenance that doesn't describe an individual
// package: the channels and platforms consulted, and an optional content
// hash per platform. ContentHash is carried through serialization as is;
// nothing in this module computes or checks it.
type Metadata struct {
	ContentHash map[string]string `yaml:"content_hash,omitempty"`
	Channels    []string          `yaml:"channels,omitempty"`
	Platforms   []string          `yaml:"platforms,omitempty"`
}

// LockedDependency is one resolved package entry. Conda-kind entries
// carry Build; pip-kind entries do not (spec.md §6).
type LockedDependency struct {
	Kind     Kind   `yaml:"kind"`
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
	Version  string `yaml:"version"`
	Build    string `yaml:"build,omitempty"`
	Channel  string `yaml:"channel,omitempty"`
	URL      string `yaml:"url,omitempty"`
}

// File is the top-level lock file document: version, metadata, and the
// resolved package list.
type File struct {
	Version  uint32             `yaml:"version"`
	Metadata Metadata           `yaml:"metadata"`
	Package  []LockedDependency `yaml:"package"`
}
