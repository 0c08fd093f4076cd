package solver

// propagate runs unit propagation starting from the given changed package
// until a fixed point, resolving and backtracking through any conflict it
// encounters along the way. Returns a non-nil error only when the search
// has exhausted every backtrack point (NoSolution) or hit an internal error.
func (idx *Index) propagate(start string) error {
	changed := []string{start}
	seen := map[string]bool{start: true}
	for len(changed) > 0 {
		pkg := changed[len(changed)-1]
		changed = changed[:len(changed)-1]
		delete(seen, pkg)

		relevant := idx.incompatsFor(pkg)
		for i := len(relevant) - 1; i >= 0; i-- {
			ic := relevant[i]
			rel, unsat := idx.solution.relation(ic)
			switch rel {
			case relSatisfied:
				learned, backtrackLevel, err := idx.resolveConflict(ic)
				if err != nil {
					return err
				}
				idx.solution.backtrack(backtrackLevel)
				// Derive the negation of the single remaining open term
				// of the learned incompatibility at the new, lower level.
				_, again := idx.solution.relation(learned)
				if again.Package != "" {
					u := idx.universeCache[again.Package]
					idx.solution.derive(again.Package, u, again.Negate(), learned)
					if !seen[again.Package] {
						changed = append(changed, again.Package)
						seen[again.Package] = true
					}
				}
			case relAlmostSatisfied:
				u := idx.universeCache[unsat.Package]
				idx.solution.derive(unsat.Package, u, unsat.Negate(), ic)
				if !seen[unsat.Package] {
					changed = append(changed, unsat.Package)
					seen[unsat.Package] = true
				}
			default:
				// Contradicted or Inconclusive: nothing to learn here.
			}
		}
	}
	return nil
}
