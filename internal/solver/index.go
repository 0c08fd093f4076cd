package solver

import (
	"context"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/matchspec"
	"avular-packages/internal/pkgversion"
	"avular-packages/internal/ports"
	"avular-packages/internal/types"
	"avular-packages/internal/universe"
)

// rootName is the synthetic package under which the user's requested
// match specs are injected as dependencies, per spec §4.4 ("the driver
// synthesizes a root universe with a single variant whose dependencies
// are the user-supplied specs").
const rootName = "__root__"

// virtualPrefix marks host-capability package names (spec §4.4, §9).
const virtualPrefix = "__"

// RequirementKind distinguishes a Required dependency (pulls the name
// into the solution) from a Constrained one (narrows the name's
// admissible variants only if something else requires it).
type RequirementKind int

const (
	Constrained RequirementKind = iota
	Required
)

// Requirement is one entry of Dependencies.Reqs.
type Requirement struct {
	Kind  RequirementKind
	Range universe.CandidateSet
}

// Dependencies is the three-way result of get_dependencies: a known set
// of requirements, or Unknown when a variant depends on an unregistered
// virtual package (dependencies are "not knowable", so the search treats
// the variant as feasible rather than infeasible and registers none of its
// requirements, not only the one on the unregistered name).
type Dependencies struct {
	Unknown bool
	Reqs    map[string]Requirement
}

type highestMatch struct {
	version    pkgversion.Version
	allTracked bool
	found      bool
}

// Index is the resolver driver (component D): it owns the universe
// cache, the match-spec memoization cache (§3's "Match-spec cache"), and
// the PubGrub-style conflict-driven search described in spec.md §4.4.
type Index struct {
	repos []ports.RepoData

	universeCache map[string]*universe.Universe
	nextUnivID    int
	matchCache    map[string]highestMatch

	solution       *PartialSolution
	incompats      []*Incompatibility
	incompatsByPkg map[string][]*Incompatibility
	nextIncompatID int

	// pendingConstrains holds Constrained ranges for names no package has
	// required yet, keyed by name. A constrains entry narrows its name's
	// term the moment something else requires that name (spec §8
	// invariant 5), regardless of which package is decided first (§8
	// invariant 6); it must not be dropped just because the constrained
	// name has not entered the solution at the time the constraining
	// package is decided.
	pendingConstrains map[string]universe.CandidateSet
}

// NewIndex constructs a driver over the given repo-data views. Views are
// scanned in registration order when a universe is first materialized.
func NewIndex(repos []ports.RepoData) *Index {
	return &Index{
		repos:             repos,
		universeCache:     map[string]*universe.Universe{},
		matchCache:        map[string]highestMatch{},
		incompatsByPkg:    map[string][]*Incompatibility{},
		pendingConstrains: map[string]universe.CandidateSet{},
	}
}

// AddVirtualPackage registers a one-variant universe for a synthetic
// package (e.g. a host capability). Registering a second universe under
// the same name is a programming error (spec §4.1, §7).
func (idx *Index) AddVirtualPackage(rec types.PackageRecord) universe.VariantID {
	if _, exists := idx.universeCache[rec.Name]; exists {
		panic("solver: duplicate virtual package registration for " + rec.Name)
	}
	u := universe.New(idx.nextUnivID, rec.Name, []types.PackageRecord{rec})
	idx.nextUnivID++
	idx.universeCache[rec.Name] = u
	return universe.VariantID{Universe: u, Index: 0}
}

// Universe returns the universe for name, scanning every registered
// repo-data view on first demand and memoizing the result. An unknown
// name yields a universe with an empty variant list rather than an
// error; the driver distinguishes "empty universe" from "error" when it
// decides whether a dependency is fatally unsatisfiable (spec §4.1, §4.4).
func (idx *Index) Universe(name string) (*universe.Universe, error) {
	if u, ok := idx.universeCache[name]; ok {
		return u, nil
	}
	var variants []types.PackageRecord
	for _, repo := range idx.repos {
		raws, ok := repo.Packages()[name]
		if !ok {
			continue
		}
		for _, raw := range raws {
			rec, err := raw.Parse()
			if err != nil {
				return nil, err
			}
			variants = append(variants, rec)
		}
	}
	u := universe.New(idx.nextUnivID, name, variants)
	idx.nextUnivID++
	idx.universeCache[name] = u
	return u, nil
}

// byOrder computes (and the universe caches) the ordering-policy
// permutation of u's variants, using CompareVariants for the first three
// cascade stages and depScore for the dependency-score stage, which needs
// cross-universe lookups the universe package itself cannot perform.
func (idx *Index) byOrder(u *universe.Universe) []int {
	return u.ByOrder(func(u *universe.Universe) []int {
		perm := make([]int, u.Size())
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(i, j int) bool {
			ii, jj := perm[i], perm[j]
			a, b := u.Variants[ii], u.Variants[jj]
			return universe.CompareVariants(a, b, func() int {
				return idx.depScore(u, ii, jj)
			}) < 0
		})
		return perm
	})
}

// depScore implements §4.3 stage 4: for each dependency name present in
// both variants' parsed dependency lists, score ±100 when exactly one
// side's matches are all feature-tracked, else ±1 in favour of the
// side with the larger highest-matching version.
func (idx *Index) depScore(u *universe.Universe, ia, ib int) int {
	depsA, errA := u.Dependencies(ia)
	depsB, errB := u.Dependencies(ib)
	if errA != nil || errB != nil {
		return 0
	}
	byName := make(map[string]matchspec.MatchSpec, len(depsA))
	for _, d := range depsA {
		byName[d.Name] = d
	}
	total := 0
	for _, db := range depsB {
		da, ok := byName[db.Name]
		if !ok {
			continue
		}
		total += idx.pairScore(da, db)
	}
	return total
}

// pairScore scores one shared dependency name between variant a (da's
// spec) and variant b (db's spec). A positive result makes a worse
// (ranks lower), matching §4.3's "positive total ⇒ left variant worse".
func (idx *Index) pairScore(da, db matchspec.MatchSpec) int {
	hvA, trackedA, okA := idx.findHighestVersion(da)
	hvB, trackedB, okB := idx.findHighestVersion(db)
	if !okA || !okB {
		return 0
	}
	if trackedA != trackedB {
		if trackedA {
			return 100
		}
		return -100
	}
	switch hvA.Compare(hvB) {
	case 1:
		return -1
	case -1:
		return 1
	default:
		return 0
	}
}

// findHighestVersion implements §4.4's find_highest_version: the highest
// version among spec.Name's variants that satisfy spec, and whether every
// matching variant is feature-tracked. Memoized by the spec's text form.
func (idx *Index) findHighestVersion(spec matchspec.MatchSpec) (pkgversion.Version, bool, bool) {
	key := spec.String()
	if cached, ok := idx.matchCache[key]; ok {
		return cached.version, cached.allTracked, cached.found
	}
	u, err := idx.Universe(spec.Name)
	if err != nil {
		idx.matchCache[key] = highestMatch{}
		return pkgversion.Zero, false, false
	}
	var highest pkgversion.Version
	found := false
	allTracked := true
	for _, v := range u.Variants {
		if !spec.Matches(v) {
			continue
		}
		if !found || v.Version.GreaterThan(highest) {
			highest = v.Version
		}
		found = true
		if !v.HasTrackedFeatures() {
			allTracked = false
		}
	}
	if !found {
		allTracked = false
	}
	idx.matchCache[key] = highestMatch{version: highest, allTracked: allTracked, found: found}
	return highest, allTracked, found
}

// getDependencies implements §4.4's get_dependencies: constrains
// contribute Constrained entries first, then depends contribute Required
// entries (upgrading any existing Constrained entry and intersecting any
// existing Required entry). A required name with an empty universe is
// Unknown when its name carries the virtual-package sentinel prefix, and
// a fatal error otherwise.
func (idx *Index) getDependencies(pkgName string, v universe.VariantID) (Dependencies, error) {
	rec := v.Record()
	result := map[string]Requirement{}

	for _, raw := range rec.Constrains {
		spec, err := matchspec.Parse(raw)
		if err != nil {
			return Dependencies{}, err
		}
		depUniverse, err := idx.Universe(spec.Name)
		if err != nil {
			return Dependencies{}, err
		}
		set := universe.RangeFromMatchSpec(depUniverse, spec.Matches)
		if existing, ok := result[spec.Name]; ok {
			result[spec.Name] = Requirement{Kind: existing.Kind, Range: universe.Intersection(existing.Range, set)}
		} else {
			result[spec.Name] = Requirement{Kind: Constrained, Range: set}
		}
	}

	parsedDeps, err := v.Universe.Dependencies(v.Index)
	if err != nil {
		return Dependencies{}, err
	}
	for _, spec := range parsedDeps {
		depUniverse, err := idx.Universe(spec.Name)
		if err != nil {
			return Dependencies{}, err
		}
		if depUniverse.Empty() {
			if strings.HasPrefix(spec.Name, virtualPrefix) {
				return Dependencies{Unknown: true}, nil
			}
			return Dependencies{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("no entries found for package " + spec.Name)
		}
		set := universe.RangeFromMatchSpec(depUniverse, spec.Matches)
		if existing, ok := result[spec.Name]; ok {
			result[spec.Name] = Requirement{Kind: Required, Range: universe.Intersection(existing.Range, set)}
		} else {
			result[spec.Name] = Requirement{Kind: Required, Range: set}
		}
	}
	return Dependencies{Reqs: result}, nil
}

// chooseVariant implements the second half of choose_package_version:
// walk u's ordering-policy permutation and return the first index that
// lies in the candidate set.
func (idx *Index) chooseVariant(u *universe.Universe, term Term) (universe.VariantID, bool) {
	for _, i := range idx.byOrder(u) {
		v := universe.VariantID{Universe: u, Index: i}
		if term.Allowed.Contains(v) {
			return v, true
		}
	}
	return universe.VariantID{}, false
}

// nextUndecided implements the first half of choose_package_version:
// among undecided packages, the one with the smallest non-zero
// population, ties broken by first-registration order. anyZero reports
// whether every undecided package had zero population (the internal
// "no packages found that can be chosen" case of spec §4.4/§7), as
// distinct from there being no undecided package at all (success).
func (idx *Index) nextUndecided() (pkg string, term Term, found bool, anyZero bool) {
	bestPop := -1
	sawAny := false
	sawNonZero := false
	for _, name := range idx.solution.pkgOrder {
		if idx.solution.decided[name] {
			continue
		}
		set, ok := idx.solution.accum[name]
		if !ok {
			continue
		}
		sawAny = true
		pop := set.Population()
		if pop == 0 {
			continue
		}
		sawNonZero = true
		if bestPop == -1 || pop < bestPop {
			bestPop = pop
			pkg = name
			term = Term{Package: name, Allowed: set}
			found = true
		}
	}
	if found {
		return pkg, term, true, false
	}
	return "", Term{}, false, sawAny && !sawNonZero
}

func (idx *Index) addIncompatibility(ic *Incompatibility) {
	ic.ID = idx.nextIncompatID
	idx.nextIncompatID++
	idx.incompats = append(idx.incompats, ic)
	for pkg := range ic.Terms {
		idx.incompatsByPkg[pkg] = append(idx.incompatsByPkg[pkg], ic)
	}
}

func (idx *Index) incompatsFor(pkg string) []*Incompatibility {
	return idx.incompatsByPkg[pkg]
}

// Solve runs the PubGrub-style search rooted at a synthetic variant whose
// dependencies are specs, per spec §4.4. On success the root is elided
// and the remaining records are returned name-sorted; on conflict the
// derivation tree is rendered (component E); any other internal error is
// surfaced as a plain error.
func (idx *Index) Solve(ctx context.Context, specs []matchspec.MatchSpec) ([]types.PackageRecord, error) {
	if len(specs) == 0 {
		return nil, errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("solve requires at least one match spec")
	}
	specStrings := make([]string, len(specs))
	for i, s := range specs {
		specStrings[i] = s.String()
	}

	rootUniverse := universe.New(idx.nextUnivID, rootName, []types.PackageRecord{{Name: rootName, Depends: specStrings}})
	idx.nextUnivID++
	idx.universeCache[rootName] = rootUniverse

	idx.solution = newPartialSolution()
	idx.solution.derive(rootName, rootUniverse, Term{Package: rootName, Allowed: universe.Full(rootUniverse)}, nil)

	next := rootName
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := idx.propagate(next); err != nil {
			return nil, err
		}

		pkg, term, found, anyZero := idx.nextUndecided()
		if !found {
			if anyZero {
				return nil, errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("no packages found that can be chosen")
			}
			break
		}

		u := idx.universeCache[pkg]
		variant, ok := idx.chooseVariant(u, term)
		if !ok {
			return nil, errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("no packages found that can be chosen")
		}

		deps, err := idx.getDependencies(pkg, variant)
		if err != nil {
			return nil, err
		}

		// Decide before registering dependency incompatibilities so any
		// direct derivation below lands at the same decision level as the
		// choice that produced it, keeping backtrack's level-based replay
		// consistent.
		idx.solution.decide(variant)

		if !deps.Unknown {
			selfTerm := Term{Package: pkg, Allowed: universe.Singleton(variant)}

			depNames := make([]string, 0, len(deps.Reqs))
			for depName := range deps.Reqs {
				depNames = append(depNames, depName)
			}
			sort.Strings(depNames)

			for _, depName := range depNames {
				req := deps.Reqs[depName]
				if req.Kind == Constrained {
					if _, alreadyInSolution := idx.solution.accum[depName]; !alreadyInSolution {
						// Nothing requires depName yet. Record the
						// narrowing for later instead of dropping it: if
						// some other package pulls depName in afterwards,
						// this range must still apply (§8 invariants 5
						// and 6). Recording it does not itself pull
						// depName into the solution.
						if pending, ok := idx.pendingConstrains[depName]; ok {
							idx.pendingConstrains[depName] = universe.Intersection(pending, req.Range)
						} else {
							idx.pendingConstrains[depName] = req.Range
						}
						continue
					}
				} else if pending, ok := idx.pendingConstrains[depName]; ok {
					// depName is being required for the first time here;
					// fold in any narrowing recorded by an already-decided
					// package's constrains.
					req.Range = universe.Intersection(req.Range, pending)
				}
				depTerm := Term{Package: depName, Allowed: req.Range}.Negate()
				ic := &Incompatibility{
					Kind:  kindDependency,
					Terms: map[string]Term{pkg: selfTerm, depName: depTerm},
				}
				idx.addIncompatibility(ic)
				if req.Range.IsFull() {
					// An unconstrained dependency's negated term degenerates
					// to the empty candidate set, which unit propagation can
					// never treat as "almost satisfied" — it is
					// unconditionally false rather than merely undecided.
					// Register the dependency directly so it still enters
					// the search as an undecided package.
					idx.solution.derive(depName, idx.universeCache[depName], Term{Package: depName, Allowed: req.Range}, ic)
				}
			}
		}
		next = pkg
	}

	return idx.extractSolution(), nil
}

// extractSolution strips the synthetic root and returns the decided
// records, sorted by name for a deterministic, order-independent result
// (spec §8 property 6).
func (idx *Index) extractSolution() []types.PackageRecord {
	seen := map[string]types.PackageRecord{}
	for _, a := range idx.solution.assignments {
		if !a.IsDecision || a.Package == rootName {
			continue
		}
		seen[a.Package] = a.Variant.Record()
	}
	out := make([]types.PackageRecord, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// conflictError renders ic's derivation tree into the structured
// diagnostic the search surfaces on NoSolution (spec §4.5).
func (idx *Index) conflictError(ic *Incompatibility) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(renderDerivationTree(ic))
}
