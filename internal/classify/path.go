package classify

import (
	"path"
	"strings"

	"github.com/jward/opimpact/internal/graph"
)

// Path is a changed path that passed the eligibility checks.
type Path struct {
	Rel      string
	Segments []string
	// Offset is 1 when the path lives under the experimental tree.
	Offset   int
	Category string
	Operator graph.ID
	// Rest holds the segments below the operator directory, file name last.
	Rest []string
}

// Base returns the file name.
func (p Path) Base() string {
	return p.Segments[len(p.Segments)-1]
}

// Dirs returns the directory segments below the operator directory.
func (p Path) Dirs() []string {
	if len(p.Rest) == 0 {
		return nil
	}
	return p.Rest[:len(p.Rest)-1]
}

func (p Path) hasDir(names ...string) bool {
	for _, d := range p.Dirs() {
		for _, n := range names {
			if d == n {
				return true
			}
		}
	}
	return false
}

// cleanRel turns a repository-relative path into slash form without leading
// "./" or "/".
func cleanRel(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = path.Clean("/" + rel)
	return strings.TrimPrefix(rel, "/")
}
