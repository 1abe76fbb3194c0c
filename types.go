package opimpact

import (
	"strings"

	"github.com/jward/opimpact/internal/classify"
	"github.com/jward/opimpact/internal/graph"
)

// Aliases for internal types that appear in the Engine API. External
// callers use these names without conversion.

type Graph = graph.Graph
type ID = graph.ID
type Operator = graph.Operator
type UnknownOperatorError = graph.UnknownOperatorError
type Kind = classify.Kind
type Platform = classify.Platform
type Path = classify.Path
type Hit = classify.Hit
type ClassifyOptions = classify.Options

// Bucket is the resolution result for one (test kind, platform) pair.
type Bucket struct {
	Kind     Kind
	Platform Platform
	// Touched lists the operators the changed paths hit directly.
	Touched []ID
	// Retest is the reverse closure of Touched.
	Retest []ID
	// Compile is the forward closure of Retest.
	Compile []ID
}

// Line renders the bucket as "<kind>:<retest>:<compile>:<platform label>",
// operator names joined by ";".
func (b Bucket) Line() string {
	return strings.Join([]string{
		string(b.Kind),
		joinIDs(b.Retest),
		joinIDs(b.Compile),
		b.Platform.Label,
	}, ":")
}

func joinIDs(ids []ID) string {
	return strings.Join(graph.Names(ids), ";")
}

// Direction selects the adjacency a closure follows.
type Direction = graph.Direction

const (
	Forward = graph.Forward
	Reverse = graph.Reverse
)
