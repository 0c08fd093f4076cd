package solver

import "avular-packages/internal/universe"

// resolveConflict implements PubGrub's conflict resolution: walk back
// through the incompatibility that became fully satisfied, merging it
// with the cause of its most recent satisfying assignment until either
// the root is implicated (NoSolution) or a safe backtrack point is
// found. Returns the learned incompatibility and the decision level to
// backtrack to.
func (idx *Index) resolveConflict(ic *Incompatibility) (*Incompatibility, int, error) {
	for {
		if isRootIncompatibility(ic) {
			return nil, 0, idx.conflictError(ic)
		}

		satisfier, ok := idx.solution.findSatisfier(ic)
		if !ok {
			return nil, 0, idx.conflictError(ic)
		}

		previousLevel := idx.solution.previousSatisfierLevel(ic, satisfier)
		if previousLevel < satisfier.DecisionLevel || satisfier.IsDecision {
			return ic, previousLevel, nil
		}

		cause := satisfier.Cause
		if cause == nil {
			return ic, previousLevel, nil
		}
		merged := mergeIncompatibilities(ic, cause, satisfier.Package)
		idx.addIncompatibility(merged)
		ic = merged
	}
}

// isRootIncompatibility reports whether ic has been reduced to asserting
// something only about the synthetic root package (or nothing at all),
// which means the user's specs themselves cannot be satisfied.
func isRootIncompatibility(ic *Incompatibility) bool {
	if len(ic.Terms) == 0 {
		return true
	}
	if len(ic.Terms) == 1 {
		for pkg := range ic.Terms {
			return pkg == rootName
		}
	}
	return false
}

// mergeIncompatibilities combines the terms of a conflicting
// incompatibility with its satisfier's cause, excluding the package whose
// assignment resolved the conflict (its term is now implied by the
// merge rather than stated directly). Overlapping terms for the same
// package are unioned, since either incompatibility's other terms being
// true is sufficient to reproduce the conflict.
func mergeIncompatibilities(ic, cause *Incompatibility, excludePkg string) *Incompatibility {
	terms := map[string]Term{}
	merge := func(pkg string, t Term) {
		if pkg == excludePkg {
			return
		}
		if existing, ok := terms[pkg]; ok {
			terms[pkg] = Term{Package: pkg, Allowed: universe.Union(existing.Allowed, t.Allowed)}
			return
		}
		terms[pkg] = t
	}
	for pkg, t := range ic.Terms {
		merge(pkg, t)
	}
	for pkg, t := range cause.Terms {
		merge(pkg, t)
	}
	return &Incompatibility{
		Kind:   kindDerived,
		Terms:  terms,
		Causes: [2]*Incompatibility{ic, cause},
	}
}
