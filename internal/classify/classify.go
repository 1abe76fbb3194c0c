// Package classify maps changed repository paths to the operators they touch,
// per test kind and platform variant.
package classify

import (
	"strings"

	"github.com/jward/opimpact/internal/graph"
)

// DefaultDenylist holds path substrings that never affect builds or tests.
// Entries are matched against the repository-relative path with a leading "/".
var DefaultDenylist = []string{
	"/docs/",
	"/examples/",
	"README",
	".md",
	"/LICENSE",
	"classify_rule.yaml",
	"OAT.xml",
}

// DefaultExperimentalDir is the leading segment of the experimental tree.
const DefaultExperimentalDir = "experimental"

// Options configures a Classifier.
type Options struct {
	Platforms       []Platform
	Denylist        []string
	Experimental    bool
	ExperimentalDir string
}

// Matcher decides whether a path belongs to one (kind, platform) bucket.
type Matcher struct {
	Kind     Kind
	Platform Platform
}

// Match reports whether the matcher claims p.
func (m Matcher) Match(p Path) bool {
	if !m.Kind.accepts(p) {
		return false
	}
	return m.Platform.IsDefault() || p.hasDir(m.Platform.Dir)
}

// Hit is one (kind, platform, operator) association produced by a path.
type Hit struct {
	Path     string
	Kind     Kind
	Platform Platform
	Operator graph.ID
}

// Classifier holds the matchers for every kind and platform. It keeps no
// per-run state; matches are collected in an Accumulator.
type Classifier struct {
	categories      map[string]bool
	platforms       []Platform
	denylist        []string
	experimental    bool
	experimentalDir string
}

// New creates a Classifier for the given known categories.
func New(categories []string, opts Options) *Classifier {
	c := &Classifier{
		categories:      make(map[string]bool, len(categories)),
		platforms:       orderPlatforms(opts.Platforms),
		denylist:        opts.Denylist,
		experimental:    opts.Experimental,
		experimentalDir: opts.ExperimentalDir,
	}
	if len(opts.Platforms) == 0 {
		c.platforms = orderPlatforms(DefaultPlatforms)
	}
	if c.denylist == nil {
		c.denylist = DefaultDenylist
	}
	if c.experimentalDir == "" {
		c.experimentalDir = DefaultExperimentalDir
	}
	for _, cat := range categories {
		c.categories[cat] = true
	}
	return c
}

// Platforms returns the variant enumeration, default last.
func (c *Classifier) Platforms() []Platform {
	return append([]Platform(nil), c.platforms...)
}

// Buckets returns every (kind, platform) pair in output order: kind outer,
// platform inner.
func (c *Classifier) Buckets() []Matcher {
	out := make([]Matcher, 0, len(Kinds)*len(c.platforms))
	for _, k := range Kinds {
		for _, p := range c.platforms {
			out = append(out, Matcher{Kind: k, Platform: p})
		}
	}
	return out
}

// Denied reports whether rel contains a denylisted substring.
func (c *Classifier) Denied(rel string) bool {
	padded := "/" + cleanRel(rel)
	for _, s := range c.denylist {
		if s != "" && strings.Contains(padded, s) {
			return true
		}
	}
	return false
}

// Parse checks eligibility of a repository-relative path and splits it into
// category, operator and the segments below the operator directory.
func (c *Classifier) Parse(rel string) (Path, bool) {
	rel = cleanRel(rel)
	if rel == "" || c.Denied(rel) {
		return Path{}, false
	}
	segs := strings.Split(rel, "/")

	offset := 0
	if c.experimental && segs[0] == c.experimentalDir {
		offset = 1
	}
	if len(segs)-offset <= 2 {
		return Path{}, false
	}
	category := segs[offset]
	if !c.categories[category] {
		return Path{}, false
	}

	return Path{
		Rel:      rel,
		Segments: segs,
		Offset:   offset,
		Category: category,
		Operator: graph.NormalizeID(category, segs[offset+1]),
		Rest:     segs[offset+2:],
	}, true
}

// Match returns at most one hit per kind for p. Specific platform variants
// are tried in order before the default; the first that accepts wins.
func (c *Classifier) Match(p Path) []Hit {
	var hits []Hit
	for _, k := range Kinds {
		for _, plat := range c.platforms {
			m := Matcher{Kind: k, Platform: plat}
			if m.Match(p) {
				hits = append(hits, Hit{Path: p.Rel, Kind: k, Platform: plat, Operator: p.Operator})
				break
			}
		}
	}
	return hits
}

// Classify parses and matches rel in one step.
func (c *Classifier) Classify(rel string) []Hit {
	p, ok := c.Parse(rel)
	if !ok {
		return nil
	}
	return c.Match(p)
}
