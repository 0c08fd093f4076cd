package universe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/types"
)

func rec(version string, build int, tracked []string, timestamp int64) types.PackageRecord {
	return types.PackageRecord{
		Name:          "pkg",
		Version:       pkgversion.MustParse(version),
		BuildNumber:   build,
		TrackFeatures: tracked,
		Timestamp:     timestamp,
	}
}

func TestCompareVariantsTrackedFeaturesOutrankVersion(t *testing.T) {
	clean := rec("1.0", 0, nil, 0)
	trackedNewer := rec("2.0", 0, []string{"debug"}, 0)
	require.True(t, CompareVariants(clean, trackedNewer, nil) < 0, "untracked variant must rank above a newer tracked one")
}

func TestCompareVariantsHigherVersionWins(t *testing.T) {
	older := rec("1.0", 0, nil, 0)
	newer := rec("2.0", 0, nil, 0)
	require.True(t, CompareVariants(newer, older, nil) < 0)
}

func TestCompareVariantsHigherBuildNumberWins(t *testing.T) {
	a := rec("1.0", 0, nil, 0)
	b := rec("1.0", 1, nil, 0)
	require.True(t, CompareVariants(b, a, nil) < 0)
}

func TestCompareVariantsFallsBackToDependencyScore(t *testing.T) {
	a := rec("1.0", 0, nil, 0)
	b := rec("1.0", 0, nil, 0)
	require.Equal(t, -5, CompareVariants(a, b, func() int { return -5 }))
}

func TestCompareVariantsFallsBackToTimestamp(t *testing.T) {
	older := rec("1.0", 0, nil, 100)
	newer := rec("1.0", 0, nil, 200)
	require.True(t, CompareVariants(newer, older, nil) < 0)
}

func TestCompareVariantsMissingTimestampIsZero(t *testing.T) {
	a := rec("1.0", 0, nil, 0)
	b := rec("1.0", 0, nil, 0)
	require.Equal(t, 0, CompareVariants(a, b, nil))
}
