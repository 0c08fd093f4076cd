package universe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/types"
)

func testUniverse(id, n int) *Universe {
	variants := make([]types.PackageRecord, n)
	for i := range variants {
		variants[i] = types.PackageRecord{Name: "pkg", Version: pkgversion.MustParse("1.0"), Build: "0"}
	}
	return New(id, "pkg", variants)
}

func TestSubsetNeverDegenerates(t *testing.T) {
	u := testUniverse(0, 4)
	s := RangeFromMatchSpec(u, func(types.PackageRecord) bool { return true })
	require.True(t, s.IsFull(), "all-matching range must normalize to Full")

	none := RangeFromMatchSpec(u, func(types.PackageRecord) bool { return false })
	require.True(t, none.IsEmpty(), "no-matching range must normalize to Empty")

	one := Singleton(VariantID{Universe: u, Index: 1})
	require.Equal(t, 1, one.Population())
	require.False(t, one.IsEmpty())
	require.False(t, one.IsFull())
}

func TestComplementInvolution(t *testing.T) {
	u := testUniverse(0, 5)
	s := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, s.Complement().Complement().Equal(s))
}

func TestIntersectionWithFullIsIdentity(t *testing.T) {
	u := testUniverse(0, 5)
	s := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, Intersection(s, Full(u)).Equal(s))
}

func TestUnionWithEmptyIsIdentity(t *testing.T) {
	u := testUniverse(0, 5)
	s := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, Union(s, Empty()).Equal(s))
}

func TestIntersectionWithComplementIsEmpty(t *testing.T) {
	u := testUniverse(0, 5)
	s := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, Intersection(s, s.Complement()).IsEmpty())
}

func TestUnionWithComplementIsFull(t *testing.T) {
	u := testUniverse(0, 5)
	s := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, Union(s, s.Complement()).IsFull())
}

func TestIntersectionAndUnionAreCommutative(t *testing.T) {
	u := testUniverse(0, 6)
	a := Singleton(VariantID{Universe: u, Index: 1})
	b := Singleton(VariantID{Universe: u, Index: 2})
	require.True(t, Intersection(a, b).Equal(Intersection(b, a)))
	require.True(t, Union(a, b).Equal(Union(b, a)))
}

func TestIntersectionAndUnionAreAssociative(t *testing.T) {
	u := testUniverse(0, 70) // exercise the multi-word bit vector path
	a := Singleton(VariantID{Universe: u, Index: 1})
	b := Singleton(VariantID{Universe: u, Index: 65})
	c := Singleton(VariantID{Universe: u, Index: 30})
	left := Union(Union(a, b), c)
	right := Union(a, Union(b, c))
	require.True(t, left.Equal(right))

	leftI := Intersection(Intersection(Union(a, b), Union(b, c)), Union(a, c))
	rightI := Intersection(Union(a, b), Intersection(Union(b, c), Union(a, c)))
	require.True(t, leftI.Equal(rightI))
}

func TestEmptyFullAndAnySubsetAreDistinct(t *testing.T) {
	u := testUniverse(0, 4)
	s := Singleton(VariantID{Universe: u, Index: 0})
	require.False(t, Empty().Equal(Full(u)))
	require.False(t, Empty().Equal(s))
	require.False(t, Full(u).Equal(s))
}

func TestRangeFromMatchSpecMatchesContains(t *testing.T) {
	u := testUniverse(0, 8)
	matchIdx := map[int]bool{1: true, 3: true, 6: true}
	for i, v := range u.Variants {
		if matchIdx[i] {
			v.BuildNumber = 9
			u.Variants[i] = v
		}
	}
	derived := RangeFromMatchSpec(u, func(r types.PackageRecord) bool { return r.BuildNumber == 9 })
	for i := 0; i < u.Size(); i++ {
		v := VariantID{Universe: u, Index: i}
		require.Equal(t, matchIdx[i], derived.Contains(v))
	}
}

func TestCrossUniverseComparisonPanics(t *testing.T) {
	u1 := testUniverse(1, 2)
	u2 := testUniverse(2, 2)
	require.Panics(t, func() {
		_ = Singleton(VariantID{Universe: u1, Index: 0}).Contains(VariantID{Universe: u2, Index: 0})
	})
}
