package matchspec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/types"
)

func rec(version string, build string, buildNumber int) types.PackageRecord {
	return types.PackageRecord{
		Name:        "pkg",
		Version:     pkgversion.MustParse(version),
		Build:       build,
		BuildNumber: buildNumber,
	}
}

func TestParseBareName(t *testing.T) {
	spec, err := Parse("python")
	require.NoError(t, err)
	require.Equal(t, "python", spec.Name)
	require.True(t, spec.Matches(rec("3.9.0", "", 0)))
}

func TestParseOperatorGluedForm(t *testing.T) {
	spec, err := Parse("python>=3.8")
	require.NoError(t, err)
	require.True(t, spec.Matches(rec("3.9.0", "", 0)))
	require.False(t, spec.Matches(rec("3.7.0", "", 0)))
}

func TestParseBareEqualsIsExactMatch(t *testing.T) {
	spec, err := Parse("python=3.9.0")
	require.NoError(t, err)
	require.Equal(t, "python", spec.Name)
	require.True(t, spec.Matches(rec("3.9.0", "", 0)))
	require.False(t, spec.Matches(rec("3.9.1", "", 0)))
}

func TestParseSpaceSeparatedVersionAndBuild(t *testing.T) {
	spec, err := Parse("libfoo >=1.0,<2.0 h0abc")
	require.NoError(t, err)
	require.True(t, spec.Matches(rec("1.5.0", "h0abc", 0)))
	require.False(t, spec.Matches(rec("2.0.0", "h0abc", 0)))
	require.False(t, spec.Matches(rec("1.5.0", "otherbuild", 0)))
}

func TestParseFuzzyVersionWildcard(t *testing.T) {
	spec, err := Parse("numpy 1.2.*")
	require.NoError(t, err)
	require.True(t, spec.Matches(rec("1.2.5", "", 0)))
	require.False(t, spec.Matches(rec("1.3.0", "", 0)))
}

func TestParseBracketForm(t *testing.T) {
	spec, err := Parse("libfoo[version='>=1.0,<2.0',build=h0*,build_number='>=3']")
	require.NoError(t, err)
	require.Equal(t, "libfoo", spec.Name)
	require.True(t, spec.Matches(rec("1.5.0", "h0abc", 5)))
	require.False(t, spec.Matches(rec("1.5.0", "h0abc", 2)))
	require.False(t, spec.Matches(rec("1.5.0", "xabc", 5)))
}

func TestParseRejectsEmptySpec(t *testing.T) {
	_, err := Parse("   ")
	require.Error(t, err)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse(">=1.0")
	require.Error(t, err)
}

func TestStringRoundTripsAsCacheKey(t *testing.T) {
	spec, err := Parse("python>=3.8")
	require.NoError(t, err)
	require.Equal(t, "python>=3.8", spec.String())
}

func TestMatchesRejectsWrongName(t *testing.T) {
	spec, err := Parse("python")
	require.NoError(t, err)
	other := rec("3.9.0", "", 0)
	other.Name = "ruby"
	require.False(t, spec.Matches(other))
}
