package virtualpkg

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectOnLinuxIncludesGlibc(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("platform-specific detection, only meaningful on linux")
	}
	records := Detect()
	names := map[string]bool{}
	for _, r := range records {
		names[r.Name] = true
	}
	require.True(t, names["__glibc"])
	require.True(t, names["__unix"])
	require.True(t, names["__archspec"])
}

func TestDetectReturnsNoDuplicateNames(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Detect() {
		require.False(t, seen[r.Name], "duplicate virtual package name %q", r.Name)
		seen[r.Name] = true
	}
}
