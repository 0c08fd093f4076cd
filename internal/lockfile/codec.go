package lockfile

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"avular-packages/internal/pkgversion"
)

// Deserialize parses a lock file document. A version newer than
// MaxVersion is a forward-compatibility error reproducing spec.md §6's
// message verbatim.
func Deserialize(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse lock file").
			WithCause(err)
	}
	if f.Version > MaxVersion {
		return File{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("found newer file format version %d, but only up to including version %d is supported", f.Version, MaxVersion))
	}
	return f, nil
}

// Serialize renders f to YAML with packages emitted in the stable
// alphabetic order prescribed by spec.md §6: name, then platform, then
// version, then build for conda-kind entries at equal (name, platform,
// version); pip-kind entries sort before conda-kind ones at that point.
// Alphabetic rather than topological order minimizes diff churn when
// packages change.
func Serialize(f File) ([]byte, error) {
	sorted := File{Version: f.Version, Metadata: f.Metadata, Package: sortedPackages(f.Package)}
	data, err := yaml.Marshal(sorted)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize lock file").
			WithCause(err)
	}
	return data, nil
}

func sortedPackages(pkgs []LockedDependency) []LockedDependency {
	out := make([]LockedDependency, len(pkgs))
	copy(out, pkgs)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func less(a, b LockedDependency) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Platform != b.Platform {
		return a.Platform < b.Platform
	}
	if cmp := compareVersions(a.Version, b.Version); cmp != 0 {
		return cmp < 0
	}
	if a.Kind != b.Kind {
		// pip-kind sorts before non-pip at equal (name, platform, version).
		return a.Kind == KindPip
	}
	return a.Build < b.Build
}

func compareVersions(a, b string) int {
	va, errA := pkgversion.Parse(a)
	vb, errB := pkgversion.Parse(b)
	if errA != nil || errB != nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return va.Compare(vb)
}
