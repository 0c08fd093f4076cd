// Package pkgversion implements the package ecosystem's total version
// order. Conda's version scheme descends from the same release/pre/post
// segment model as Python's PEP 440, so this wraps the teacher's existing
// aquasecurity/go-pep440-version comparator rather than hand-rolling a
// parser for a grammar the examples already solved.
package pkgversion

import (
	"fmt"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Version is a totally ordered package version.
type Version struct {
	raw    string
	parsed pep440.Version
}

// Zero is the version used for the synthetic root package.
var Zero = Version{raw: "0"}

// Parse parses a version string. An empty string parses to Zero.
func Parse(value string) (Version, error) {
	if value == "" {
		return Zero, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", value, err)
	}
	return Version{raw: value, parsed: parsed}, nil
}

// MustParse panics on parse failure. Used for literals known at compile time.
func MustParse(value string) Version {
	v, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original version text.
func (v Version) String() string {
	if v.raw == "" {
		return "0"
	}
	return v.raw
}

// Compare returns -1, 0, or 1 comparing v to other.
func (v Version) Compare(other Version) int {
	return v.parsed.Compare(other.parsed)
}

// LessThan reports whether v orders strictly before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v orders strictly after other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal reports whether v and other compare equal.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Max returns the greater of v and other.
func (v Version) Max(other Version) Version {
	if other.GreaterThan(v) {
		return other
	}
	return v
}
