package repodata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRepodata(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "repodata.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestViewParsesPackagesAndPackagesConda(t *testing.T) {
	dir := t.TempDir()
	path := writeRepodata(t, dir, `{
		"info": {"subdir": "linux-64"},
		"packages": {
			"python-3.9.0-h0.tar.bz2": {
				"name": "python", "version": "3.9.0", "build": "h0", "build_number": 0,
				"depends": ["openssl >=1.1.1"], "timestamp": 1600000000
			}
		},
		"packages.conda": {
			"python-3.10.0-h1.conda": {
				"name": "python", "version": "3.10.0", "build": "h1", "build_number": 1,
				"depends": ["openssl >=1.1.1"], "timestamp": 1700000000000
			}
		}
	}`)

	view, err := NewView(path, "conda-forge")
	require.NoError(t, err)

	entries := view.Packages()["python"]
	require.Len(t, entries, 2)

	var versions []string
	for _, e := range entries {
		rec, err := e.Parse()
		require.NoError(t, err)
		require.Equal(t, "linux-64", rec.Subdir)
		require.Equal(t, "conda-forge", rec.Channel)
		versions = append(versions, rec.Version.String())
	}
	require.ElementsMatch(t, []string{"3.9.0", "3.10.0"}, versions)
}

func TestViewMillisecondTimestampIsNormalized(t *testing.T) {
	dir := t.TempDir()
	path := writeRepodata(t, dir, `{
		"info": {"subdir": "noarch"},
		"packages": {
			"pkg-1.0-0.tar.bz2": {"name": "pkg", "version": "1.0", "build": "0", "timestamp": 1700000000000}
		}
	}`)
	view, err := NewView(path, "conda-forge")
	require.NoError(t, err)
	rec, err := view.Packages()["pkg"][0].Parse()
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), rec.Timestamp)
}

func TestNewViewMissingFile(t *testing.T) {
	_, err := NewView(filepath.Join(t.TempDir(), "missing.json"), "conda-forge")
	require.Error(t, err)
}
