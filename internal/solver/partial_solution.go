package solver

import "avular-packages/internal/universe"

// relationKind classifies how an incompatibility's terms compare against
// the current partial solution.
type relationKind int

const (
	relSatisfied relationKind = iota
	relContradicted
	relAlmostSatisfied
	relInconclusive
)

// Assignment is one entry in the partial solution: either a decision (a
// concrete variant chosen by the search) or a derivation (a term implied
// by unit propagation, with the incompatibility that forced it).
type Assignment struct {
	Package       string
	Term          Term
	DecisionLevel int
	IsDecision    bool
	Cause         *Incompatibility // nil for decisions
	Variant       universe.VariantID
}

// PartialSolution is the ordered sequence of assignments built up during
// the search, per spec §4.4/§5 (single-threaded, synchronous).
type PartialSolution struct {
	assignments   []Assignment
	decisionLevel int
	accum         map[string]universe.CandidateSet
	universes     map[string]*universe.Universe
	decided       map[string]bool
	pkgOrder      []string
}

func newPartialSolution() *PartialSolution {
	return &PartialSolution{
		accum:     map[string]universe.CandidateSet{},
		universes: map[string]*universe.Universe{},
		decided:   map[string]bool{},
	}
}

// relationOf reports how a single term compares against what's currently
// known about its package: Satisfied (term is implied true), Contradicted
// (term is implied false), or Inconclusive (either is still possible).
func (ps *PartialSolution) relationOf(term Term) relationKind {
	if term.Allowed.IsFull() {
		return relSatisfied
	}
	if term.Allowed.IsEmpty() {
		return relContradicted
	}
	accum, exists := ps.accum[term.Package]
	if !exists {
		return relInconclusive
	}
	if accum.IsEmpty() {
		return relContradicted
	}
	inter := universe.Intersection(accum, term.Allowed)
	if inter.IsEmpty() {
		return relContradicted
	}
	if inter.Equal(accum) {
		return relSatisfied
	}
	return relInconclusive
}

// relation computes the overall relation of an incompatibility: Satisfied
// (every term holds -> conflict), Contradicted (some term can never
// hold), AlmostSatisfied (all but one term holds; returns that term), or
// Inconclusive (two or more terms are still open).
func (ps *PartialSolution) relation(ic *Incompatibility) (relationKind, Term) {
	unsatisfiedCount := 0
	var unsat Term
	for _, term := range ic.Terms {
		switch ps.relationOf(term) {
		case relContradicted:
			return relContradicted, Term{}
		case relInconclusive:
			unsatisfiedCount++
			unsat = term
			if unsatisfiedCount > 1 {
				return relInconclusive, Term{}
			}
		case relSatisfied:
			// contributes toward a possible conflict
		}
	}
	if unsatisfiedCount == 0 {
		return relSatisfied, Term{}
	}
	return relAlmostSatisfied, unsat
}

// decide records a chosen variant as a new decision, incrementing the
// decision level.
func (ps *PartialSolution) decide(v universe.VariantID) {
	ps.decisionLevel++
	term := Term{Package: v.Universe.Name, Allowed: universe.Singleton(v)}
	ps.assignments = append(ps.assignments, Assignment{
		Package:       v.Universe.Name,
		Term:          term,
		DecisionLevel: ps.decisionLevel,
		IsDecision:    true,
		Variant:       v,
	})
	ps.universes[v.Universe.Name] = v.Universe
	ps.decided[v.Universe.Name] = true
	ps.applyTerm(v.Universe.Name, term)
}

// derive records a term implied by unit propagation at the current
// decision level.
func (ps *PartialSolution) derive(pkg string, u *universe.Universe, term Term, cause *Incompatibility) {
	ps.assignments = append(ps.assignments, Assignment{
		Package:       pkg,
		Term:          term,
		DecisionLevel: ps.decisionLevel,
		Cause:         cause,
	})
	ps.universes[pkg] = u
	ps.applyTerm(pkg, term)
}

func (ps *PartialSolution) applyTerm(pkg string, term Term) {
	if cur, ok := ps.accum[pkg]; ok {
		ps.accum[pkg] = universe.Intersection(cur, term.Allowed)
		return
	}
	ps.accum[pkg] = term.Allowed
	ps.pkgOrder = append(ps.pkgOrder, pkg)
}

// backtrack removes every assignment made after the given decision level
// and recomputes the accumulated per-package state from scratch.
func (ps *PartialSolution) backtrack(level int) {
	cut := len(ps.assignments)
	for i, a := range ps.assignments {
		if a.DecisionLevel > level {
			cut = i
			break
		}
	}
	ps.assignments = ps.assignments[:cut]
	ps.decisionLevel = level
	ps.accum = map[string]universe.CandidateSet{}
	ps.decided = map[string]bool{}
	ps.pkgOrder = nil
	for _, a := range ps.assignments {
		ps.applyTerm(a.Package, a.Term)
		if a.IsDecision {
			ps.decided[a.Package] = true
		}
	}
}

// decidedVariant returns the variant decided for pkg, if any.
func (ps *PartialSolution) decidedVariant(pkg string) (universe.VariantID, bool) {
	for i := len(ps.assignments) - 1; i >= 0; i-- {
		if ps.assignments[i].Package == pkg && ps.assignments[i].IsDecision {
			return ps.assignments[i].Variant, true
		}
	}
	return universe.VariantID{}, false
}

// findSatisfier returns the earliest assignment after which every term
// of ic is satisfied, replaying assignments in order.
func (ps *PartialSolution) findSatisfier(ic *Incompatibility) (Assignment, bool) {
	accum := map[string]universe.CandidateSet{}
	apply := func(pkg string, term Term) {
		if cur, ok := accum[pkg]; ok {
			accum[pkg] = universe.Intersection(cur, term.Allowed)
			return
		}
		accum[pkg] = term.Allowed
	}
	allSatisfied := func() bool {
		for pkg, term := range ic.Terms {
			got, ok := accum[pkg]
			if !ok {
				return false
			}
			inter := universe.Intersection(got, term.Allowed)
			if !inter.Equal(got) {
				return false
			}
		}
		return true
	}
	for _, a := range ps.assignments {
		if _, relevant := ic.Terms[a.Package]; !relevant {
			continue
		}
		apply(a.Package, a.Term)
		if allSatisfied() {
			return a, true
		}
	}
	return Assignment{}, false
}

// previousSatisfierLevel returns the highest decision level among
// assignments needed to satisfy ic, excluding satisfier's own package,
// replaying assignments strictly before satisfier. The result is never
// below 1, the level of the synthetic root's decision: a highest level
// of 0 is reported as 1.
func (ps *PartialSolution) previousSatisfierLevel(ic *Incompatibility, satisfier Assignment) int {
	level := 0
	for _, a := range ps.assignments {
		if a.Package == satisfier.Package && a.DecisionLevel == satisfier.DecisionLevel && a.IsDecision == satisfier.IsDecision {
			break
		}
		if _, relevant := ic.Terms[a.Package]; !relevant {
			continue
		}
		if a.Package == satisfier.Package {
			continue
		}
		if a.DecisionLevel > level {
			level = a.DecisionLevel
		}
	}
	if level == 0 {
		return 1
	}
	return level
}
