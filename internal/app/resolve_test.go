package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRepodata(t *testing.T, dir, filename, json string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(json), 0o644))
	return path
}

const samplePythonRepodata = `{
  "info": {"subdir": "linux-64"},
  "packages": {
    "python-3.9.0-h0.tar.bz2": {
      "name": "python", "version": "3.9.0", "build": "h0", "build_number": 0,
      "depends": [], "timestamp": 1000
    }
  },
  "packages.conda": {}
}`

func TestSolveWritesLockFile(t *testing.T) {
	dir := t.TempDir()
	repoPath := writeRepodata(t, dir, "repodata.json", samplePythonRepodata)
	lockPath := filepath.Join(dir, "out.lock.yaml")

	svc := NewService()
	result, err := svc.Solve(context.Background(), SolveRequest{
		Channels:     []ChannelSource{{Path: repoPath, Channel: "conda-forge"}},
		Platform:     "linux-64",
		Specs:        []string{"python"},
		LockFilePath: lockPath,
	})
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "python", result.Packages[0].Name)
	require.FileExists(t, lockPath)
	require.NotEmpty(t, result.LockFile)
}

func TestSolveRequiresAtLeastOneChannel(t *testing.T) {
	svc := NewService()
	_, err := svc.Solve(context.Background(), SolveRequest{Specs: []string{"python"}})
	require.Error(t, err)
}

func TestSolveRequiresAtLeastOneSpec(t *testing.T) {
	dir := t.TempDir()
	repoPath := writeRepodata(t, dir, "repodata.json", samplePythonRepodata)
	svc := NewService()
	_, err := svc.Solve(context.Background(), SolveRequest{
		Channels: []ChannelSource{{Path: repoPath, Channel: "conda-forge"}},
	})
	require.Error(t, err)
}

func TestSolvePropagatesMissingRepodataFile(t *testing.T) {
	svc := NewService()
	_, err := svc.Solve(context.Background(), SolveRequest{
		Channels: []ChannelSource{{Path: "/nonexistent/repodata.json", Channel: "conda-forge"}},
		Specs:    []string{"python"},
	})
	require.Error(t, err)
}
