package store

import "github.com/jward/opimpact/internal/graph"

// Reader is the read side of a snapshot used by the query commands.
type Reader interface {
	Snapshot() (*Snapshot, error)
	Categories() ([]string, error)
	AllOperators() ([]*Operator, error)
	OperatorsByCategory(category string) ([]*Operator, error)
	OperatorsByName(names []string) ([]*Operator, error)
	AllDependencies() ([]*Dependency, error)
	LoadGraph() (*graph.Graph, error)
}

// Compile-time check: *Store satisfies Reader.
var _ Reader = (*Store)(nil)
