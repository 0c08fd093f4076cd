package universe

import (
	"math/bits"

	"avular-packages/internal/types"
)

// setKind discriminates the three representations a CandidateSet can take.
type setKind int

const (
	kindEmpty setKind = iota
	kindFull
	kindSubset
)

// CandidateSet is a three-valued set over the variants of a single
// universe: Empty, Full (every variant, without materializing a bitmap),
// or Subset (a bit vector with at least one bit set and one bit clear —
// a Subset degenerating to all-set or all-clear is re-normalized to Full
// or Empty respectively). Grounded on resolver.rs's PackageVariantSet.
type CandidateSet struct {
	kind     setKind
	universe *Universe
	bits     []uint64
}

const wordBits = 64

func wordsFor(n int) int {
	return (n + wordBits - 1) / wordBits
}

// Empty returns the empty candidate set.
func Empty() CandidateSet {
	return CandidateSet{kind: kindEmpty}
}

// Full returns the candidate set containing every variant of u.
func Full(u *Universe) CandidateSet {
	return CandidateSet{kind: kindFull, universe: u}
}

// Singleton returns a candidate set containing only v.
func Singleton(v VariantID) CandidateSet {
	s := CandidateSet{kind: kindSubset, universe: v.Universe, bits: make([]uint64, wordsFor(v.Universe.Size()))}
	s.setBit(v.Index)
	return s.normalize()
}

func (s CandidateSet) setBit(i int) {
	s.bits[i/wordBits] |= 1 << uint(i%wordBits)
}

func (s CandidateSet) getBit(i int) bool {
	return s.bits[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Population returns the number of variants in the set: popcount for
// Subset, len(variants) for Full, 0 for Empty.
func (s CandidateSet) Population() int {
	switch s.kind {
	case kindEmpty:
		return 0
	case kindFull:
		return s.universe.Size()
	default:
		total := 0
		for _, w := range s.bits {
			total += bits.OnesCount64(w)
		}
		return total
	}
}

// IsEmpty reports whether the set contains no variants.
func (s CandidateSet) IsEmpty() bool {
	return s.kind == kindEmpty
}

// IsFull reports whether the set contains every variant of its universe.
func (s CandidateSet) IsFull() bool {
	return s.kind == kindFull
}

// Contains reports whether v is in the set.
func (s CandidateSet) Contains(v VariantID) bool {
	switch s.kind {
	case kindEmpty:
		return false
	case kindFull:
		return true
	default:
		assertSameUniverse(VariantID{Universe: s.universe}, v)
		return s.getBit(v.Index)
	}
}

// Complement returns the set of variants not in s.
func (s CandidateSet) Complement() CandidateSet {
	switch s.kind {
	case kindEmpty:
		return CandidateSet{kind: kindFull, universe: s.universe}
	case kindFull:
		return CandidateSet{kind: kindEmpty}
	default:
		out := make([]uint64, len(s.bits))
		n := s.universe.Size()
		for i := range out {
			out[i] = ^s.bits[i]
		}
		maskTail(out, n)
		return CandidateSet{kind: kindSubset, universe: s.universe, bits: out}.normalize()
	}
}

// maskTail clears bits beyond the universe's variant count in the last word.
func maskTail(bitsSlice []uint64, n int) {
	if n%wordBits == 0 {
		return
	}
	last := len(bitsSlice) - 1
	if last < 0 {
		return
	}
	valid := n % wordBits
	bitsSlice[last] &= (uint64(1) << uint(valid)) - 1
}

// Intersection returns the variants present in both a and b.
func Intersection(a, b CandidateSet) CandidateSet {
	if a.kind == kindEmpty || b.kind == kindEmpty {
		return Empty()
	}
	if a.kind == kindFull {
		return b
	}
	if b.kind == kindFull {
		return a
	}
	assertSameUniverse(VariantID{Universe: a.universe}, VariantID{Universe: b.universe})
	out := make([]uint64, len(a.bits))
	for i := range out {
		out[i] = a.bits[i] & b.bits[i]
	}
	return CandidateSet{kind: kindSubset, universe: a.universe, bits: out}.normalize()
}

// Union returns the variants present in either a or b.
func Union(a, b CandidateSet) CandidateSet {
	if a.kind == kindFull {
		return Full(a.universe)
	}
	if b.kind == kindFull {
		return Full(b.universe)
	}
	if a.kind == kindEmpty {
		return b
	}
	if b.kind == kindEmpty {
		return a
	}
	assertSameUniverse(VariantID{Universe: a.universe}, VariantID{Universe: b.universe})
	out := make([]uint64, len(a.bits))
	for i := range out {
		out[i] = a.bits[i] | b.bits[i]
	}
	return CandidateSet{kind: kindSubset, universe: a.universe, bits: out}.normalize()
}

// Equal reports bitwise equality: Empty != Full != any Subset.
func (s CandidateSet) Equal(other CandidateSet) bool {
	if s.kind != other.kind {
		return false
	}
	if s.kind != kindSubset {
		return true
	}
	for i := range s.bits {
		if s.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// normalize re-collapses an all-zero Subset to Empty and an all-one
// Subset to Full, preserving the invariant that a Subset never
// degenerates (popcount(s) not in {0, size}).
func (s CandidateSet) normalize() CandidateSet {
	if s.kind != kindSubset {
		return s
	}
	n := s.universe.Size()
	count := 0
	for _, w := range s.bits {
		count += bits.OnesCount64(w)
	}
	if count == 0 {
		return CandidateSet{kind: kindEmpty}
	}
	if count == n {
		return CandidateSet{kind: kindFull, universe: s.universe}
	}
	return s
}

// RangeFromMatchSpec builds the candidate set of every variant in u whose
// record satisfies spec's predicate.
func RangeFromMatchSpec(u *Universe, matches func(types.PackageRecord) bool) CandidateSet {
	s := CandidateSet{kind: kindSubset, universe: u, bits: make([]uint64, wordsFor(u.Size()))}
	for i, variant := range u.Variants {
		if matches(variant) {
			s.setBit(i)
		}
	}
	return s.normalize()
}
