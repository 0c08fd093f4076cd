// Package universe implements the package-variant universe (component A)
// and the candidate set algebra (component B) of the resolver design:
// for each package name, the dense set of known records plus the
// three-valued (Empty/Full/Subset) bitset representation of a range over
// those variants that the PubGrub-style search operates on.
//
// Grounded on original_source/crates/rattler/src/solver/resolver.rs's
// PackageVariants/PackageVariantSet/PackageVariantRange, translated from
// Rc<RefCell<...>> + BitVec to plain Go structs with a bit vector of
// uint64 words, since the resolver runs single-threaded per spec.
package universe

import (
	"avular-packages/internal/matchspec"
	"avular-packages/internal/types"
)

// Universe holds every known record for one package name, plus lazily
// computed derived data: the ordering-policy permutation and the parsed
// dependency list per variant. Once populated, Variants is never mutated.
type Universe struct {
	ID       int
	Name     string
	Variants []types.PackageRecord

	byOrder        []int
	orderComputed  bool
	deps           [][]matchspec.MatchSpec
	depsComputed   []bool
	depsParseError []error
}

// New constructs a Universe for name from the given variants. id must be
// unique across all universes created during a single solve; it backs
// the cross-universe identity check that assertSameUniverse performs in
// every build, since Go has no pointer-identity guarantee analogous to
// Rust's Rc::ptr_eq across map lookups.
func New(id int, name string, variants []types.PackageRecord) *Universe {
	return &Universe{
		ID:             id,
		Name:           name,
		Variants:       variants,
		deps:           make([][]matchspec.MatchSpec, len(variants)),
		depsComputed:   make([]bool, len(variants)),
		depsParseError: make([]error, len(variants)),
	}
}

// Size returns the number of known variants.
func (u *Universe) Size() int {
	return len(u.Variants)
}

// Empty reports whether this universe has no known variants. The
// resolver driver treats an empty universe for a required dependency as
// a fatal error unless the name carries the "__" virtual-package prefix.
func (u *Universe) Empty() bool {
	return len(u.Variants) == 0
}

// ByOrder returns the ordering-policy permutation, computing it on first
// access via compute and caching the result. compute receives this
// universe and must return a permutation of [0, len(Variants)).
func (u *Universe) ByOrder(compute func(*Universe) []int) []int {
	if !u.orderComputed {
		u.byOrder = compute(u)
		u.orderComputed = true
	}
	return u.byOrder
}

// Dependencies returns the parsed match specs for variant i, parsing and
// memoizing on first access.
func (u *Universe) Dependencies(i int) ([]matchspec.MatchSpec, error) {
	if u.depsComputed[i] {
		return u.deps[i], u.depsParseError[i]
	}
	var parsed []matchspec.MatchSpec
	for _, raw := range u.Variants[i].Depends {
		spec, err := matchspec.Parse(raw)
		if err != nil {
			u.depsComputed[i] = true
			u.depsParseError[i] = err
			return nil, err
		}
		parsed = append(parsed, spec)
	}
	u.deps[i] = parsed
	u.depsComputed[i] = true
	return parsed, nil
}

// VariantID identifies one variant: a universe plus an index into it.
// Equality and order reduce to index comparisons; comparing VariantIDs
// from different universes is a programming error, caught by a cheap
// pointer/ID comparison rather than a general assertion mechanism since
// this check runs on the search's hot path.
type VariantID struct {
	Universe *Universe
	Index    int
}

// Equal reports whether two VariantIDs refer to the same variant.
func (v VariantID) Equal(other VariantID) bool {
	assertSameUniverse(v, other)
	return v.Universe == other.Universe && v.Index == other.Index
}

// Less orders two VariantIDs by index within the same universe.
func (v VariantID) Less(other VariantID) bool {
	assertSameUniverse(v, other)
	return v.Index < other.Index
}

// Record returns the package record this VariantID identifies.
func (v VariantID) Record() types.PackageRecord {
	return v.Universe.Variants[v.Index]
}

// assertSameUniverse is the debug assertion required by spec: comparing
// variant identities across different universes is a programming error.
// It is cheap enough (pointer/ID comparison) to leave enabled
// unconditionally rather than gating it behind a build tag. Structural
// record validation (e.g. a record's name being non-empty) is asserted
// through assert-lib where records enter the universe instead, in
// internal/repodata.
func assertSameUniverse(a, b VariantID) {
	if a.Universe != b.Universe && a.Universe.ID != b.Universe.ID {
		panic("universe: compared variant identities from different universes")
	}
}
