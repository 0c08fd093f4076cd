// Package app orchestrates the resolver core into an end-to-end solve:
// load repo data views, build the index, register virtual packages, run
// Index.Solve, and optionally write a lock file. Grounded on the
// teacher's internal/app/service.go Service-struct-plus-constructor
// shape, reduced to the one collaborator this domain needs.
package app

import (
	"avular-packages/internal/repodata"
)

// Service is the orchestration entry point used by the CLI. RepoLoader is
// swappable, but it returns a concrete *repodata.View, whose records are
// filled only by reading a repodata.json file (repodata.NewView).
type Service struct {
	RepoLoader func(path, channel string) (*repodata.View, error)
}

// NewService returns a Service backed by the real on-disk repodata.View
// loader.
func NewService() Service {
	return Service{RepoLoader: repodata.NewView}
}
