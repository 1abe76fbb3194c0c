package classify

import "github.com/jward/opimpact/internal/graph"

// BucketKey identifies one (kind, platform) bucket.
type BucketKey struct {
	Kind     Kind
	Platform string
}

// Accumulator collects matched operators per bucket for a single run.
type Accumulator struct {
	buckets map[BucketKey]*idSet
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{buckets: make(map[BucketKey]*idSet)}
}

// Add records a hit. Repeated operators keep their first position.
func (a *Accumulator) Add(h Hit) {
	key := BucketKey{Kind: h.Kind, Platform: h.Platform.Name}
	set, ok := a.buckets[key]
	if !ok {
		set = &idSet{seen: make(map[graph.ID]bool)}
		a.buckets[key] = set
	}
	set.add(h.Operator)
}

// Operators returns the operators matched for a bucket in first-hit order.
func (a *Accumulator) Operators(kind Kind, platform string) []graph.ID {
	set, ok := a.buckets[BucketKey{Kind: kind, Platform: platform}]
	if !ok {
		return nil
	}
	return append([]graph.ID(nil), set.order...)
}

// Empty reports whether nothing was matched.
func (a *Accumulator) Empty() bool {
	return len(a.buckets) == 0
}

type idSet struct {
	seen  map[graph.ID]bool
	order []graph.ID
}

func (s *idSet) add(id graph.ID) {
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.order = append(s.order, id)
}
