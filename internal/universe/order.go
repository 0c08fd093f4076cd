package universe

import "avular-packages/internal/types"

// CompareVariants implements the cascade of §4.3: tracked features,
// version, build number, then (via depScore, supplied by the caller
// because it requires cross-universe lookups the universe package does
// not have access to) the dependency-score tiebreak, then timestamp.
// Returns a negative value if a ranks above (is preferred to) b, positive
// if b ranks above a, and zero if entirely tied (stable by index is left
// to the caller's sort).
//
// Grounded on original_source/.../resolver.rs's compare_variants, with
// the Rust Ordering::Less/Greater polarity preserved: a variant that
// "ranks above" sorts earlier in by_order.
func CompareVariants(a, b types.PackageRecord, depScore func() int) int {
	// 1. Tracked features: no tracked features ranks above having them.
	aClean, bClean := !a.HasTrackedFeatures(), !b.HasTrackedFeatures()
	if aClean != bClean {
		if aClean {
			return -1
		}
		return 1
	}

	// 2. Higher version ranks above lower.
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return -cmp
	}

	// 3. Higher build number ranks above lower.
	if a.BuildNumber != b.BuildNumber {
		if a.BuildNumber > b.BuildNumber {
			return -1
		}
		return 1
	}

	// 4. Dependency score: positive total score means a is worse (ranks
	// lower), matching §4.3's "positive total ⇒ left variant is worse".
	if depScore != nil {
		if score := depScore(); score != 0 {
			return score
		}
	}

	// 5. Higher timestamp ranks above lower; missing timestamp is zero.
	if a.Timestamp != b.Timestamp {
		if a.Timestamp > b.Timestamp {
			return -1
		}
		return 1
	}

	return 0
}
