package solver

import (
	"fmt"
	"sort"
	"strings"
)

// renderDerivationTree converts a NoSolution incompatibility's causal
// derivation tree into a human-readable explanation (component E),
// walking the Causes DAG depth-first and collapsing adjacent duplicate
// lines, which is what repeated "no matching versions" nodes collapse
// into once the shared sub-derivation is rendered once.
func renderDerivationTree(ic *Incompatibility) string {
	var lines []string
	visited := map[int]bool{}
	var walk func(n *Incompatibility)
	walk = func(n *Incompatibility) {
		if n == nil || visited[n.ID] {
			return
		}
		visited[n.ID] = true
		walk(n.Causes[0])
		walk(n.Causes[1])
		lines = append(lines, describeIncompatibility(n))
	}
	walk(ic)
	if len(lines) == 0 {
		lines = []string{describeIncompatibility(ic)}
	}

	var deduped []string
	for _, l := range lines {
		if len(deduped) > 0 && deduped[len(deduped)-1] == l {
			continue
		}
		deduped = append(deduped, l)
	}

	var b strings.Builder
	b.WriteString("cannot solve dependencies; derivation:\n")
	for _, l := range deduped {
		b.WriteString("  - ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// describeIncompatibility renders a single incompatibility node as one
// line. kindNoVersions and kindUnavailable nodes get a fixed phrasing;
// everything else lists its terms in a stable, name-sorted order.
func describeIncompatibility(ic *Incompatibility) string {
	switch ic.Kind {
	case kindNoVersions:
		return fmt.Sprintf("no versions of %s satisfy the accumulated constraints", ic.Package)
	case kindUnavailable:
		return fmt.Sprintf("no entries found for package %s", ic.Package)
	}

	names := make([]string, 0, len(ic.Terms))
	for name := range ic.Terms {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		t := ic.Terms[name]
		switch {
		case t.Allowed.IsFull():
			parts = append(parts, name)
		case t.Allowed.IsEmpty():
			parts = append(parts, "not "+name)
		default:
			parts = append(parts, name+" (restricted)")
		}
	}
	return strings.Join(parts, " and ") + " cannot all hold"
}
