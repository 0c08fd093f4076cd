package pkgversion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyStringIsZero(t *testing.T) {
	v, err := Parse("")
	require.NoError(t, err)
	require.True(t, v.Equal(Zero))
	require.Equal(t, "0", v.String())
}

func TestParseRejectsInvalidVersion(t *testing.T) {
	_, err := Parse("not-a-version!!")
	require.Error(t, err)
}

func TestCompareOrdersNumerically(t *testing.T) {
	require.True(t, MustParse("1.10.0").GreaterThan(MustParse("1.9.0")), "numeric segment compare, not lexicographic")
	require.True(t, MustParse("2.0.0").GreaterThan(MustParse("1.99.0")))
	require.True(t, MustParse("1.0.0").Equal(MustParse("1.0.0")))
}

func TestComparePreReleaseOrdersBeforeFinal(t *testing.T) {
	require.True(t, MustParse("1.0.0").GreaterThan(MustParse("1.0.0rc1")))
	require.True(t, MustParse("1.0.0rc2").GreaterThan(MustParse("1.0.0rc1")))
}

func TestMaxReturnsGreater(t *testing.T) {
	a := MustParse("1.0.0")
	b := MustParse("2.0.0")
	require.True(t, a.Max(b).Equal(b))
	require.True(t, b.Max(a).Equal(b))
}

func TestStringReturnsOriginalText(t *testing.T) {
	require.Equal(t, "1.2.3", MustParse("1.2.3").String())
}

func TestMustParsePanicsOnInvalidVersion(t *testing.T) {
	require.Panics(t, func() { MustParse("!!!") })
}
