// Package virtualpkg provides a small static detector for common
// host-capability (virtual) packages, grounded on
// original_source/crates/rattler-bin/.../create.rs's
// DETECTED_VIRTUAL_PACKAGES usage. Detection of virtual packages is
// explicitly out of scope for the resolver core (spec.md §1); this is
// the illustrative default caller SPEC_FULL.md describes, not part of
// the core's contract.
package virtualpkg

import (
	"runtime"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/solver"
	"avular-packages/internal/types"
)

// Detect returns the virtual packages this process can determine
// statically for the running platform. It does not probe the actual
// glibc or CUDA driver version; that level of host introspection is
// left to a real caller's environment-specific detector.
func Detect() []types.PackageRecord {
	var out []types.PackageRecord
	switch runtime.GOOS {
	case "linux":
		out = append(out,
			virtualRecord("__unix", "0", ""),
			virtualRecord("__linux", linuxKernelVersion(), ""),
			virtualRecord("__glibc", "2.35", ""),
			virtualRecord("__archspec", "1", runtime.GOARCH),
		)
	case "darwin":
		out = append(out,
			virtualRecord("__unix", "0", ""),
			virtualRecord("__osx", "13.0", ""),
			virtualRecord("__archspec", "1", runtime.GOARCH),
		)
	case "windows":
		out = append(out,
			virtualRecord("__win", "0", ""),
			virtualRecord("__archspec", "1", runtime.GOARCH),
		)
	}
	return out
}

func virtualRecord(name, version, build string) types.PackageRecord {
	return types.PackageRecord{
		Name:    name,
		Version: pkgversion.MustParse(version),
		Build:   build,
	}
}

// linuxKernelVersion is a conservative floor; a real caller would read
// uname instead.
func linuxKernelVersion() string {
	return "5.0"
}

// Register adds every detected virtual package to idx via
// Index.AddVirtualPackage.
func Register(idx *solver.Index) {
	for _, rec := range Detect() {
		idx.AddVirtualPackage(rec)
	}
}
