package opimpact

import (
	"context"
	"fmt"

	"github.com/jward/opimpact/internal/classify"
	"github.com/jward/opimpact/internal/graph"
)

// Classification is the outcome of matching a change list.
type Classification struct {
	// Hits lists every (kind, platform, operator) association in input order.
	Hits []Hit
	acc  *classify.Accumulator
}

// Touched returns the operators matched for one bucket.
func (c *Classification) Touched(kind Kind, platform string) []ID {
	return c.acc.Operators(kind, platform)
}

// Classify matches changed paths against every test kind and platform
// variant. Missing, duplicate, denylisted and unclassifiable paths contribute
// nothing.
func (e *Engine) Classify(ctx context.Context, changed []string) (*Classification, error) {
	result := &Classification{acc: classify.NewAccumulator()}
	seen := make(map[string]bool, len(changed))

	for _, raw := range changed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, ok := e.relPath(raw)
		if !ok || seen[rel] {
			continue
		}
		seen[rel] = true

		p, ok := e.classifier.Parse(rel)
		if !ok {
			e.logger.Debug("path not classified", "path", rel)
			continue
		}
		if e.filter != nil {
			excluded, err := e.filter.Exclude(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", rel, err)
			}
			if excluded {
				e.logger.Debug("path excluded by filter", "path", rel)
				continue
			}
		}

		for _, h := range e.classifier.Match(p) {
			result.acc.Add(h)
			result.Hits = append(result.Hits, h)
		}
	}
	return result, nil
}

// Resolve classifies changed and computes the retest and compile sets of
// every non-empty bucket, in bucket order: kind outer, platform inner.
// Any unknown operator fails the whole resolution.
func (e *Engine) Resolve(ctx context.Context, changed []string) ([]Bucket, error) {
	cls, err := e.Classify(ctx, changed)
	if err != nil {
		return nil, err
	}

	var buckets []Bucket
	for _, m := range e.classifier.Buckets() {
		touched := cls.Touched(m.Kind, m.Platform.Name)
		if len(touched) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{Kind: m.Kind, Platform: m.Platform, Touched: touched})
	}
	if len(buckets) == 0 {
		e.logger.Info("no operators affected", "paths", len(changed))
		return nil, nil
	}

	if e.useParallel && len(buckets) > 1 {
		err = e.closeBucketsParallel(ctx, buckets)
	} else {
		err = e.closeBuckets(ctx, buckets)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("resolved", "paths", len(changed), "hits", len(cls.Hits), "buckets", len(buckets))
	return buckets, nil
}

func (e *Engine) closeBuckets(ctx context.Context, buckets []Bucket) error {
	for i := range buckets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.closeBucket(&buckets[i]); err != nil {
			return err
		}
	}
	return nil
}

// closeBucket fills Retest and Compile for b.
func (e *Engine) closeBucket(b *Bucket) error {
	retest, err := e.graph.Closure(graph.Reverse, b.Touched)
	if err != nil {
		return fmt.Errorf("%s/%s retest set: %w", b.Kind, b.Platform.Name, err)
	}
	compile, err := e.graph.Closure(graph.Forward, retest)
	if err != nil {
		return fmt.Errorf("%s/%s compile set: %w", b.Kind, b.Platform.Name, err)
	}
	b.Retest = retest
	b.Compile = compile
	e.logger.Debug("bucket closed",
		"kind", b.Kind, "platform", b.Platform.Name,
		"touched", len(b.Touched), "retest", len(retest), "compile", len(compile))
	return nil
}

// Dependents returns the reverse closure of the named operators.
func (e *Engine) Dependents(names ...string) ([]ID, error) {
	return closureByName(e.graph, graph.Reverse, names)
}

// Dependencies returns the forward closure of the named operators.
func (e *Engine) Dependencies(names ...string) ([]ID, error) {
	return closureByName(e.graph, graph.Forward, names)
}

// ClosureByName runs a closure over g from operators given by graph-wide name.
func ClosureByName(g *Graph, dir Direction, names []string) ([]ID, error) {
	return closureByName(g, dir, names)
}

func closureByName(g *graph.Graph, dir graph.Direction, names []string) ([]ID, error) {
	seeds := make([]ID, 0, len(names))
	for _, n := range names {
		id, ok := g.Lookup(n)
		if !ok {
			return nil, &graph.UnknownOperatorError{Name: n, Seed: n}
		}
		seeds = append(seeds, id)
	}
	return g.Closure(dir, seeds)
}
