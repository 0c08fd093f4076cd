package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/lockfile"
	"avular-packages/internal/matchspec"
	"avular-packages/internal/ports"
	"avular-packages/internal/solver"
	"avular-packages/internal/types"
	"avular-packages/internal/virtualpkg"
)

// Solve loads every requested channel, builds a resolver index over them,
// registers virtual packages when requested, and solves for req.Specs.
// When req.LockFilePath is set the rendered lock file is both returned in
// SolveResult.LockFile and written to that path.
func (s Service) Solve(ctx context.Context, req SolveRequest) (SolveResult, error) {
	if len(req.Channels) == 0 {
		return SolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one channel is required (provide -c/--channel)")
	}
	if len(req.Specs) == 0 {
		return SolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one match spec is required")
	}

	repos := make([]ports.RepoData, 0, len(req.Channels))
	for _, ch := range req.Channels {
		view, err := s.RepoLoader(ch.Path, ch.Channel)
		if err != nil {
			return SolveResult{}, err
		}
		repos = append(repos, view)
	}

	specs := make([]matchspec.MatchSpec, 0, len(req.Specs))
	for _, raw := range req.Specs {
		spec, err := matchspec.Parse(raw)
		if err != nil {
			return SolveResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(err.Error()).
				WithCause(err)
		}
		specs = append(specs, spec)
	}

	idx := solver.NewIndex(repos)
	if req.DetectVirtual {
		virtualpkg.Register(idx)
	}

	solved, err := idx.Solve(ctx, specs)
	if err != nil {
		return SolveResult{}, err
	}

	result := SolveResult{Packages: toSolvedPackages(solved)}

	if strings.TrimSpace(req.LockFilePath) != "" {
		data, err := lockfile.Serialize(buildLockFile(req, solved))
		if err != nil {
			return SolveResult{}, err
		}
		if err := os.WriteFile(req.LockFilePath, data, 0o644); err != nil {
			return SolveResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write lock file: " + req.LockFilePath).
				WithCause(err)
		}
		result.LockFile = string(data)
	}

	return result, nil
}

func toSolvedPackages(records []types.PackageRecord) []SolvedPackage {
	out := make([]SolvedPackage, len(records))
	for i, r := range records {
		out[i] = SolvedPackage{Name: r.Name, Version: r.Version.String(), Build: r.Build, Channel: r.Channel}
	}
	return out
}

func buildLockFile(req SolveRequest, records []types.PackageRecord) lockfile.File {
	channels := make([]string, len(req.Channels))
	for i, ch := range req.Channels {
		channels[i] = ch.Channel
	}
	platforms := []string{req.Platform}

	packages := make([]lockfile.LockedDependency, len(records))
	for i, r := range records {
		packages[i] = lockfile.LockedDependency{
			Kind:     lockfile.KindConda,
			Name:     r.Name,
			Platform: req.Platform,
			Version:  r.Version.String(),
			Build:    r.Build,
			Channel:  r.Channel,
		}
	}

	return lockfile.File{
		Version:  lockfile.MaxVersion,
		Metadata: lockfile.Metadata{Channels: channels, Platforms: platforms},
		Package:  packages,
	}
}
