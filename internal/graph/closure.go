package graph

import "fmt"

// Direction selects which adjacency a closure follows.
type Direction int

const (
	// Forward follows "requires" edges: what must be built for the seeds.
	Forward Direction = iota
	// Reverse follows "required by" edges: what is affected by the seeds.
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// UnknownOperatorError reports a seed or traversed name that is not part of
// the graph. Seed is the seed whose traversal reached Name and Category is
// that seed's category.
type UnknownOperatorError struct {
	Name     string
	Seed     string
	Category string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q (category %q, reached from %q)", e.Name, e.Category, e.Seed)
}

// Closure returns every operator reachable from seeds along dir, in depth-first
// discovery order. Each seed comes before anything first reached through it and
// no operator appears twice. Cycles are tolerated.
func (g *Graph) Closure(dir Direction, seeds []ID) ([]ID, error) {
	adj := g.forward
	if dir == Reverse {
		adj = g.reverse
	}

	w := &walker{
		graph:   g,
		adj:     adj,
		visited: make(map[string]bool),
	}
	for _, seed := range seeds {
		if err := w.visit(seed.String(), seed); err != nil {
			return nil, err
		}
	}
	return w.order, nil
}

// walker carries the visited accumulator shared by all seeds of one call.
type walker struct {
	graph   *Graph
	adj     map[string][]string
	visited map[string]bool
	order   []ID
}

func (w *walker) visit(name string, seed ID) error {
	if w.visited[name] {
		return nil
	}
	op, ok := w.graph.operators[name]
	if !ok {
		return &UnknownOperatorError{Name: name, Seed: seed.String(), Category: seed.Category}
	}
	w.visited[name] = true
	w.order = append(w.order, op.ID)

	for _, next := range w.adj[name] {
		if w.visited[next] {
			continue
		}
		if err := w.visit(next, seed); err != nil {
			return err
		}
	}
	return nil
}
