package lockfile

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func builderMessage(t *testing.T, err error) string {
	t.Helper()
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) {
		return builder.Msg
	}
	return err.Error()
}

func sampleFile() File {
	return File{
		Version: 1,
		Metadata: Metadata{
			Channels:  []string{"conda-forge"},
			Platforms: []string{"linux-64"},
		},
		Package: []LockedDependency{
			{Kind: KindConda, Name: "python", Platform: "linux-64", Version: "3.9.0", Build: "h0"},
			{Kind: KindPip, Name: "attrs", Platform: "linux-64", Version: "23.1.0"},
			{Kind: KindConda, Name: "attrs", Platform: "linux-64", Version: "23.1.0", Build: "pyh0"},
		},
	}
}

func TestSerializeOrdersPackagesAlphabetically(t *testing.T) {
	data, err := Serialize(sampleFile())
	require.NoError(t, err)

	decoded, err := Deserialize(data)
	require.NoError(t, err)
	require.Len(t, decoded.Package, 3)

	require.Equal(t, "attrs", decoded.Package[0].Name)
	require.Equal(t, KindPip, decoded.Package[0].Kind, "pip-kind must sort before conda-kind at equal name/platform/version")
	require.Equal(t, "attrs", decoded.Package[1].Name)
	require.Equal(t, KindConda, decoded.Package[1].Kind)
	require.Equal(t, "python", decoded.Package[2].Name)
}

func TestRoundTripIsIdempotent(t *testing.T) {
	data, err := Serialize(sampleFile())
	require.NoError(t, err)

	once, err := Deserialize(data)
	require.NoError(t, err)

	reserialized, err := Serialize(once)
	require.NoError(t, err)

	twice, err := Deserialize(reserialized)
	require.NoError(t, err)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("round-trip mismatch (-first +second):\n%s", diff)
	}
}

func TestDeserializeRejectsNewerVersion(t *testing.T) {
	_, err := Deserialize([]byte("version: 1000\nmetadata: {}\npackage: []\n"))
	require.Error(t, err)
	require.Equal(t, "found newer file format version 1000, but only up to including version 2 is supported", builderMessage(t, err))
}

func TestDeserializeAcceptsMaxVersion(t *testing.T) {
	_, err := Deserialize([]byte("version: 2\nmetadata: {}\npackage: []\n"))
	require.NoError(t, err)
}
