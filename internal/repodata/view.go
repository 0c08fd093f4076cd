// Package repodata loads conda-style repodata.json channel/platform
// views from disk, implementing the ports.RepoData external interface
// the resolver core consumes (spec.md §6.1). Fetching and caching over
// the network is explicitly out of scope for this repo (spec.md §1);
// this adapter only decodes a file already on disk, grounded on the
// teacher's internal/adapters/repo_index_file.go load-once-and-cache
// pattern, reshaped from YAML repo indexes to the conda JSON schema.
package repodata

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/ports"
	"avular-packages/internal/types"
)

// rawFile mirrors the subset of conda's repodata.json schema this
// resolver needs: the subdir a channel view covers, plus the two record
// maps real channels split packages across (.tar.bz2 vs .conda).
type rawFile struct {
	Info struct {
		Subdir string `json:"subdir"`
	} `json:"info"`
	Packages      map[string]rawEntry `json:"packages"`
	PackagesConda map[string]rawEntry `json:"packages.conda"`
}

type rawEntry struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Build         string   `json:"build"`
	BuildNumber   int      `json:"build_number"`
	Depends       []string `json:"depends"`
	Constrains    []string `json:"constrains"`
	TrackFeatures string   `json:"track_features"`
	Timestamp     int64    `json:"timestamp"`
	MD5           string   `json:"md5"`
	SHA256        string   `json:"sha256"`
}

// rawRecord implements ports.RawRecord: parsing (and thus version
// validation) is deferred until Parse is called, matching spec.md
// §4.1's "a record whose dependencies are never consulted is never
// parsed" memoization discipline one level up, at the record itself.
type rawRecord struct {
	entry    rawEntry
	filename string
	channel  string
	subdir   string
}

func (r rawRecord) Parse() (types.PackageRecord, error) {
	assert.NotEmpty(context.Background(), r.entry.Name, "repodata: package "+r.filename+" has an empty name")
	version, err := pkgversion.Parse(r.entry.Version)
	if err != nil {
		return types.PackageRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repodata: package " + r.filename + " has an invalid version").
			WithCause(err)
	}
	var tracked []string
	if r.entry.TrackFeatures != "" {
		for _, f := range strings.Split(r.entry.TrackFeatures, ",") {
			if f = strings.TrimSpace(f); f != "" {
				tracked = append(tracked, f)
			}
		}
	}
	return types.PackageRecord{
		Name:          r.entry.Name,
		Version:       version,
		Build:         r.entry.Build,
		BuildNumber:   r.entry.BuildNumber,
		Depends:       r.entry.Depends,
		Constrains:    r.entry.Constrains,
		TrackFeatures: tracked,
		Timestamp:     normalizeTimestamp(r.entry.Timestamp),
		Channel:       r.channel,
		Subdir:        r.subdir,
		Filename:      r.filename,
		MD5:           r.entry.MD5,
		SHA256:        r.entry.SHA256,
	}, nil
}

// normalizeTimestamp accepts both the legacy second-resolution timestamps
// and the millisecond-resolution ones real conda-forge repodata.json
// files use today, per conda's own repodata convention: a value too
// large to be a plausible Unix-seconds timestamp is milliseconds.
func normalizeTimestamp(ts int64) int64 {
	const y9999InSeconds = 253402300799
	if ts > y9999InSeconds {
		return ts / 1000
	}
	return ts
}

// View is a load-once, cached repodata.json channel/platform view.
type View struct {
	Path    string
	Channel string

	packages map[string][]ports.RawRecord
}

// NewView reads and decodes the repodata.json file at path, eagerly
// (rather than lazily like the teacher's text-config adapters) because
// ports.RepoData.Packages has no error return: decode failures must
// surface at construction time.
func NewView(path, channel string) (*View, error) {
	v := &View{Path: path, Channel: channel}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) load() error {
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("repodata file not found: " + v.Path).
			WithCause(err)
	}
	var file rawFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repodata file is not valid JSON: " + v.Path).
			WithCause(err)
	}
	v.packages = map[string][]ports.RawRecord{}
	add := func(filename string, entry rawEntry) {
		rec := rawRecord{entry: entry, filename: filename, channel: v.Channel, subdir: file.Info.Subdir}
		v.packages[entry.Name] = append(v.packages[entry.Name], rec)
	}
	// file.Packages/file.PackagesConda are JSON objects decoded into Go
	// maps, so ranging over them directly would make variant order (and
	// therefore by_order's final tiebreak, spec §5) depend on map
	// iteration order rather than only on the universe, the ordering
	// policy, and the choose_package_version tiebreak rule. Sort
	// filenames first so the order records are appended is deterministic.
	filenames := make([]string, 0, len(file.Packages)+len(file.PackagesConda))
	for filename := range file.Packages {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	for _, filename := range filenames {
		add(filename, file.Packages[filename])
	}
	filenames = filenames[:0]
	for filename := range file.PackagesConda {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	for _, filename := range filenames {
		add(filename, file.PackagesConda[filename])
	}
	return nil
}

// Packages implements ports.RepoData.
func (v *View) Packages() map[string][]ports.RawRecord {
	return v.packages
}
