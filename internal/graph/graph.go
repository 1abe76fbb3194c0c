package graph

// Operator is a named build/test unit.
type Operator struct {
	ID ID
	// ComputeUnits lists the platform scopes the operator is built for.
	// Empty means unrestricted.
	ComputeUnits []string
}

// Name returns the operator's graph-wide name.
func (o *Operator) Name() string {
	return o.ID.String()
}

// Edge is a directed dependency: From requires To to be built first.
type Edge struct {
	From string
	To   string
}

// Graph holds forward (requires) and reverse (required-by) adjacency over a
// closed set of operators. A Graph is read-only after Build and safe for
// concurrent use.
type Graph struct {
	operators  map[string]*Operator
	order      []string
	categories []string
	forward    map[string][]string
	reverse    map[string][]string
}

// Build materializes a Graph from the loader's operators and edges. Edges may
// name operators absent from ops; those are reported by Closure when reached.
// Duplicate operators keep the first occurrence; duplicate edges are dropped.
func Build(ops []*Operator, edges []Edge) *Graph {
	g := &Graph{
		operators: make(map[string]*Operator, len(ops)),
		forward:   make(map[string][]string),
		reverse:   make(map[string][]string),
	}

	seenCategory := make(map[string]bool)
	for _, op := range ops {
		name := op.Name()
		if _, dup := g.operators[name]; dup {
			continue
		}
		g.operators[name] = op
		g.order = append(g.order, name)
		if !seenCategory[op.ID.Category] {
			seenCategory[op.ID.Category] = true
			g.categories = append(g.categories, op.ID.Category)
		}
	}

	seenEdge := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if seenEdge[e] {
			continue
		}
		seenEdge[e] = true
		g.forward[e.From] = append(g.forward[e.From], e.To)
		g.reverse[e.To] = append(g.reverse[e.To], e.From)
	}

	return g
}

// Operator returns the operator registered under name.
func (g *Graph) Operator(name string) (*Operator, bool) {
	op, ok := g.operators[name]
	return op, ok
}

// Lookup resolves a graph-wide name to its ID.
func (g *Graph) Lookup(name string) (ID, bool) {
	op, ok := g.operators[name]
	if !ok {
		return ID{}, false
	}
	return op.ID, true
}

// Has reports whether name is a known operator.
func (g *Graph) Has(name string) bool {
	_, ok := g.operators[name]
	return ok
}

// Operators returns all operators in declaration order.
func (g *Graph) Operators() []*Operator {
	ops := make([]*Operator, len(g.order))
	for i, name := range g.order {
		ops[i] = g.operators[name]
	}
	return ops
}

// Categories returns the known categories in first-declared order.
func (g *Graph) Categories() []string {
	return append([]string(nil), g.categories...)
}

// Edges returns every edge in insertion order grouped by source operator.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.order {
		for _, to := range g.forward[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Dependencies returns the direct forward neighbors of name.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.forward[name]...)
}

// Dependents returns the direct reverse neighbors of name.
func (g *Graph) Dependents(name string) []string {
	return append([]string(nil), g.reverse[name]...)
}

// Len returns the number of operators.
func (g *Graph) Len() int {
	return len(g.order)
}
