// Package matchspec parses conda-style match-spec strings into predicates
// over package records. A match spec constrains a package name plus an
// optional version range, build string, and build number.
//
// Grammar (a practical subset of conda's real match-spec grammar):
//
//	matchspec   := name [ "[" bracket "]" ]
//	             | name version-op single-version
//	             | name " " version [ " " build ]
//	version-op  := ">=" | "<=" | "==" | "!=" | "~=" | ">" | "<" | "="
//	bracket     := key "=" quoted-value ("," key "=" quoted-value)*
//	version     := version-clause ("," version-clause)*
//
// The operator-glued form (e.g. "python>=3.8") carries exactly one
// version clause and no build string; comma-joined ranges and a build
// string are accepted only in the space-separated or bracket forms.
//
// This grammar is deliberately a restatement of the operator-token
// scanning already used by the teacher's constraint parser
// (internal/core/constraint.go in the reference repo this module was
// adapted from), generalized from a single apt/pip clause to conda's
// comma-separated multi-clause version ranges.
package matchspec

import (
	"fmt"
	"strings"

	"avular-packages/internal/pkgversion"
	"avular-packages/internal/types"
)

// Op is a version comparison operator.
type Op string

const (
	OpEq     Op = "=="
	OpNe     Op = "!="
	OpGte    Op = ">="
	OpLte    Op = "<="
	OpGt     Op = ">"
	OpLt     Op = "<"
	OpCompat Op = "~="
	// OpStartsWith is conda's "1.2.*" fuzzy-match shorthand.
	OpStartsWith Op = "=*"
	// opBareEq is conda's common bare "=" exact-match shorthand (e.g.
	// "python=3.9"). It is recognized only as an input token and always
	// normalized to OpEq — VersionClause.Op never holds this value.
	opBareEq Op = "="
)

// VersionClause is one comparison within a (possibly comma-joined) range.
type VersionClause struct {
	Op      Op
	Version pkgversion.Version
	Raw     string
}

// MatchSpec is a predicate over package records with an optional required
// name. Two match specs are equal (and hashable via their string form) iff
// their normalized text is identical, which is what the resolver's
// match-spec cache keys on.
type MatchSpec struct {
	Name          string
	VersionRanges []VersionClause
	Build         string
	BuildIsPrefix bool
	BuildNumberOp Op
	BuildNumber   int
	hasBuildNum   bool
	text          string
}

// String returns the canonical text form, used as the cache key.
func (m MatchSpec) String() string {
	return m.text
}

// opOrder is scanned in order, so every multi-character operator must
// precede opBareEq: otherwise a bare "=" match would fire on the "="
// suffix of ">=", "<=", "!=", "~=", or "==" before the real operator is
// tried.
var opOrder = []Op{OpGte, OpLte, OpCompat, OpNe, OpEq, OpGt, OpLt, opBareEq}

// canonicalOp normalizes the bare "=" shorthand to OpEq so every
// VersionClause/BuildNumberOp downstream only ever sees OpEq.
func canonicalOp(op Op) Op {
	if op == opBareEq {
		return OpEq
	}
	return op
}

// Parse parses a match-spec string such as "python", "python>=3.8",
// "python 3.9.*", or "libfoo >=1.0,<2.0 build123".
func Parse(raw string) (MatchSpec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MatchSpec{}, fmt.Errorf("empty match spec")
	}
	spec := MatchSpec{text: trimmed}

	if before, bracket, ok := strings.Cut(trimmed, "["); ok {
		bracket = strings.TrimSuffix(strings.TrimSpace(bracket), "]")
		spec.Name = strings.TrimSpace(before)
		if err := parseBracket(&spec, bracket); err != nil {
			return MatchSpec{}, err
		}
		if spec.Name == "" {
			return MatchSpec{}, fmt.Errorf("match spec missing name: %q", raw)
		}
		return spec, nil
	}

	fields := strings.Fields(trimmed)
	switch len(fields) {
	case 0:
		return MatchSpec{}, fmt.Errorf("empty match spec")
	case 1:
		name, ranges, err := parseNameAndVersion(fields[0])
		if err != nil {
			return MatchSpec{}, err
		}
		spec.Name, spec.VersionRanges = name, ranges
	case 2:
		spec.Name = fields[0]
		ranges, err := parseVersionRanges(fields[1])
		if err != nil {
			return MatchSpec{}, err
		}
		spec.VersionRanges = ranges
	default:
		spec.Name = fields[0]
		ranges, err := parseVersionRanges(fields[1])
		if err != nil {
			return MatchSpec{}, err
		}
		spec.VersionRanges = ranges
		spec.Build, spec.BuildIsPrefix = parseBuild(fields[2])
	}
	if spec.Name == "" {
		return MatchSpec{}, fmt.Errorf("match spec missing name: %q", raw)
	}
	return spec, nil
}

// parseNameAndVersion handles the operator-glued single-token form, e.g.
// "python>=3.8" or "python==3.9".
func parseNameAndVersion(token string) (string, []VersionClause, error) {
	for _, op := range opOrder {
		if idx := strings.Index(token, string(op)); idx >= 0 {
			name := strings.TrimSpace(token[:idx])
			version := strings.TrimSpace(token[idx+len(op):])
			if version == "" {
				return "", nil, fmt.Errorf("invalid match spec: %q", token)
			}
			clause, err := newClause(canonicalOp(op), version)
			if err != nil {
				return "", nil, err
			}
			return name, []VersionClause{clause}, nil
		}
	}
	if strings.ContainsAny(token, "=<>!~") {
		return "", nil, fmt.Errorf("invalid match spec operator in %q", token)
	}
	return token, nil, nil
}

func parseVersionRanges(raw string) ([]VersionClause, error) {
	var out []VersionClause
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		matched := false
		for _, op := range opOrder {
			if strings.HasPrefix(part, string(op)) {
				clause, err := newClause(canonicalOp(op), strings.TrimSpace(part[len(op):]))
				if err != nil {
					return nil, err
				}
				out = append(out, clause)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if strings.HasSuffix(part, ".*") || strings.HasSuffix(part, "*") {
			prefix := strings.TrimSuffix(strings.TrimSuffix(part, "*"), ".")
			out = append(out, VersionClause{Op: OpStartsWith, Raw: prefix})
			continue
		}
		// Bare version with no operator means exact match, conda-style.
		clause, err := newClause(OpEq, part)
		if err != nil {
			return nil, err
		}
		out = append(out, clause)
	}
	return out, nil
}

func newClause(op Op, version string) (VersionClause, error) {
	if op == OpStartsWith {
		return VersionClause{Op: op, Raw: version}, nil
	}
	parsed, err := pkgversion.Parse(version)
	if err != nil {
		return VersionClause{}, err
	}
	return VersionClause{Op: op, Version: parsed, Raw: version}, nil
}

func parseBuild(token string) (string, bool) {
	if strings.HasSuffix(token, "*") {
		return strings.TrimSuffix(token, "*"), true
	}
	return token, false
}

func parseBracket(spec *MatchSpec, bracket string) error {
	for _, kv := range splitBracketFields(bracket) {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "'\"")
		switch key {
		case "version":
			ranges, err := parseVersionRanges(value)
			if err != nil {
				return err
			}
			spec.VersionRanges = ranges
		case "build":
			spec.Build, spec.BuildIsPrefix = parseBuild(value)
		case "build_number":
			n, op, err := parseBuildNumber(value)
			if err != nil {
				return err
			}
			spec.BuildNumber, spec.BuildNumberOp, spec.hasBuildNum = n, op, true
		}
	}
	return nil
}

func parseBuildNumber(value string) (int, Op, error) {
	op := OpEq
	for _, candidate := range opOrder {
		if strings.HasPrefix(value, string(candidate)) {
			op = canonicalOp(candidate)
			value = strings.TrimPrefix(value, string(candidate))
			break
		}
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &n); err != nil {
		return 0, "", fmt.Errorf("invalid build_number %q: %w", value, err)
	}
	return n, op, nil
}

// splitBracketFields splits "version='>=1.0',build=foo" on top-level
// commas, respecting single/double quoting so an internal ",<2.0" inside
// a quoted version range isn't treated as a field separator.
func splitBracketFields(bracket string) []string {
	var out []string
	var cur strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(bracket); i++ {
		c := bracket[i]
		switch {
		case inQuote != 0:
			cur.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
			cur.WriteByte(c)
		case c == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// Matches reports whether the record satisfies every clause of the spec.
func (m MatchSpec) Matches(r types.PackageRecord) bool {
	if m.Name != "" && m.Name != r.Name {
		return false
	}
	for _, clause := range m.VersionRanges {
		if !clauseMatches(clause, r.Version) {
			return false
		}
	}
	if m.Build != "" {
		if m.BuildIsPrefix {
			if !strings.HasPrefix(r.Build, m.Build) {
				return false
			}
		} else if r.Build != m.Build {
			return false
		}
	}
	if m.hasBuildNum {
		switch m.BuildNumberOp {
		case OpEq, "":
			if r.BuildNumber != m.BuildNumber {
				return false
			}
		case OpGte:
			if r.BuildNumber < m.BuildNumber {
				return false
			}
		case OpLte:
			if r.BuildNumber > m.BuildNumber {
				return false
			}
		case OpGt:
			if r.BuildNumber <= m.BuildNumber {
				return false
			}
		case OpLt:
			if r.BuildNumber >= m.BuildNumber {
				return false
			}
		}
	}
	return true
}

func clauseMatches(clause VersionClause, version pkgversion.Version) bool {
	if clause.Op == OpStartsWith {
		return strings.HasPrefix(version.String(), clause.Raw)
	}
	switch clause.Op {
	case OpEq:
		return version.Equal(clause.Version)
	case OpNe:
		return !version.Equal(clause.Version)
	case OpGte:
		return version.GreaterThan(clause.Version) || version.Equal(clause.Version)
	case OpLte:
		return version.LessThan(clause.Version) || version.Equal(clause.Version)
	case OpGt:
		return version.GreaterThan(clause.Version)
	case OpLt:
		return version.LessThan(clause.Version)
	case OpCompat:
		return version.GreaterThan(clause.Version) || version.Equal(clause.Version)
	default:
		return false
	}
}
