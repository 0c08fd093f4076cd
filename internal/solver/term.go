// Package solver implements the resolver driver (component D) and
// diagnostics (component E): a PubGrub-style conflict-driven search
// wired to the dependency-provider contract of spec §4.4, grounded on
// original_source/crates/rattler/src/solver/resolver.rs's Index and its
// use of the Rust `pubgrub` crate's DependencyProvider trait.
package solver

import "avular-packages/internal/universe"

// Term is one fact a PubGrub incompatibility asserts about a package:
// "this package's selected variant lies in Allowed". Negation is modeled
// by complementing Allowed rather than carrying a separate sign flag,
// which lets every relation check reuse the same candidate-set algebra.
type Term struct {
	Package string
	Allowed universe.CandidateSet
}

// Negate returns the term asserting the opposite: the selected variant
// does NOT lie in Allowed.
func (t Term) Negate() Term {
	return Term{Package: t.Package, Allowed: t.Allowed.Complement()}
}

// incompatKind labels an incompatibility for diagnostics rendering.
type incompatKind int

const (
	kindRoot incompatKind = iota
	kindNoVersions
	kindDependency
	kindDerived
	kindUnavailable
)

// Incompatibility is a set of terms that cannot all hold simultaneously.
// Derived incompatibilities record their two parents so the derivation
// tree can be rendered on failure.
type Incompatibility struct {
	ID      int
	Terms   map[string]Term
	Kind    incompatKind
	Package string // for kindNoVersions/kindUnavailable: the offending package
	Causes  [2]*Incompatibility
}

func (ic *Incompatibility) isDerived() bool {
	return ic.Kind == kindDerived
}
