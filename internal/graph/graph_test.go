package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(category, name string) *Operator {
	return &Operator{ID: NormalizeID(category, name)}
}

// normGraph mirrors a small norm category:
//
//	add_rms_norm -> rms_norm -> norm.common
//	add_rms_norm -> norm.common
func normGraph() *Graph {
	ops := []*Operator{
		op("norm", "rms_norm"),
		op("norm", "add_rms_norm"),
		op("norm", "common"),
	}
	edges := []Edge{
		{From: "rms_norm", To: "norm.common"},
		{From: "add_rms_norm", To: "rms_norm"},
		{From: "add_rms_norm", To: "norm.common"},
	}
	return Build(ops, edges)
}

func ids(names ...string) []ID {
	out := make([]ID, len(names))
	for i, n := range names {
		out[i] = ID{Local: n}
	}
	return out
}

// =============================================================================
// IDs
// =============================================================================

func TestID_CommonIsQualifiedByCategory(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "norm.common", NormalizeID("norm", "common").String())
	assert.Equal(t, "rms_norm", NormalizeID("norm", "rms_norm").String())
	assert.True(t, CommonID("conv").IsCommon())
	assert.False(t, NormalizeID("conv", "conv2d_v2").IsCommon())
}

func TestDependencyName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "norm.common", DependencyName("norm", "common"))
	assert.Equal(t, "matmul.common", DependencyName("norm", "matmul.common"))
	assert.Equal(t, "mat_mul_v3", DependencyName("norm", "mat_mul_v3"))
}

// =============================================================================
// Build
// =============================================================================

func TestBuild_ForwardAndReverseAgree(t *testing.T) {
	t.Parallel()
	g := normGraph()

	assert.Equal(t, []string{"norm.common"}, g.Dependencies("rms_norm"))
	assert.Equal(t, []string{"rms_norm", "norm.common"}, g.Dependencies("add_rms_norm"))
	assert.Equal(t, []string{"rms_norm", "add_rms_norm"}, g.Dependents("norm.common"))
	assert.Equal(t, []string{"add_rms_norm"}, g.Dependents("rms_norm"))
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"norm"}, g.Categories())
}

func TestBuild_DropsDuplicates(t *testing.T) {
	t.Parallel()
	g := Build(
		[]*Operator{op("a", "x"), op("a", "x"), op("a", "y")},
		[]Edge{{From: "x", To: "y"}, {From: "x", To: "y"}},
	)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"y"}, g.Dependencies("x"))
	assert.Len(t, g.Edges(), 1)
}

func TestBuild_LookupAndCategories(t *testing.T) {
	t.Parallel()
	g := Build([]*Operator{op("norm", "rms_norm"), op("conv", "common")}, nil)

	id, ok := g.Lookup("conv.common")
	require.True(t, ok)
	assert.Equal(t, CommonID("conv"), id)

	_, ok = g.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"norm", "conv"}, g.Categories())
}

// =============================================================================
// Closure
// =============================================================================

func TestClosure_ForwardIncludesCommon(t *testing.T) {
	t.Parallel()
	g := normGraph()

	got, err := g.Closure(Forward, ids("rms_norm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rms_norm", "norm.common"}, Names(got))
}

func TestClosure_ReverseOfLeafIsItself(t *testing.T) {
	t.Parallel()
	g := normGraph()

	got, err := g.Closure(Reverse, ids("add_rms_norm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"add_rms_norm"}, Names(got))
}

func TestClosure_ReverseOfCommonReachesCategory(t *testing.T) {
	t.Parallel()
	g := normGraph()

	got, err := g.Closure(Reverse, []ID{CommonID("norm")})
	require.NoError(t, err)
	assert.Equal(t, []string{"norm.common", "rms_norm", "add_rms_norm"}, Names(got))
}

func TestClosure_DepthFirstDiscoveryOrder(t *testing.T) {
	t.Parallel()
	// a -> b -> d, a -> c -> d
	g := Build(
		[]*Operator{op("x", "a"), op("x", "b"), op("x", "c"), op("x", "d")},
		[]Edge{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	)
	got, err := g.Closure(Forward, ids("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c"}, Names(got))
}

func TestClosure_SharedAccumulatorAcrossSeeds(t *testing.T) {
	t.Parallel()
	g := normGraph()

	got, err := g.Closure(Forward, ids("rms_norm", "add_rms_norm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rms_norm", "norm.common", "add_rms_norm"}, Names(got))
}

func TestClosure_TerminatesOnCycles(t *testing.T) {
	t.Parallel()
	g := Build(
		[]*Operator{op("x", "a"), op("x", "b"), op("x", "c")},
		[]Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "a"}},
	)

	for _, dir := range []Direction{Forward, Reverse} {
		got, err := g.Closure(dir, ids("b"))
		require.NoError(t, err, dir.String())
		assert.Len(t, got, 3, dir.String())
		assert.Equal(t, "b", got[0].String())
	}
}

func TestClosure_EmptySeeds(t *testing.T) {
	t.Parallel()
	got, err := normGraph().Closure(Forward, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClosure_UnknownSeed(t *testing.T) {
	t.Parallel()
	g := normGraph()

	_, err := g.Closure(Reverse, []ID{NormalizeID("norm", "ghost_norm")})
	require.Error(t, err)

	var unknown *UnknownOperatorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ghost_norm", unknown.Name)
	assert.Equal(t, "ghost_norm", unknown.Seed)
	assert.Equal(t, "norm", unknown.Category)
	assert.Contains(t, err.Error(), "ghost_norm")
}

func TestClosure_UnknownDependencyNamesSeed(t *testing.T) {
	t.Parallel()
	g := Build(
		[]*Operator{op("index", "scatter"), op("index", "gather_v2")},
		[]Edge{{"scatter", "gather_v2"}, {"gather_v2", "missing_dep"}},
	)

	_, err := g.Closure(Forward, []ID{NormalizeID("index", "scatter")})
	var unknown *UnknownOperatorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "missing_dep", unknown.Name)
	assert.Equal(t, "scatter", unknown.Seed)
	assert.Equal(t, "index", unknown.Category)
}

func TestClosure_IdempotentOnAcyclicGraph(t *testing.T) {
	t.Parallel()
	g := normGraph()

	once, err := g.Closure(Forward, ids("add_rms_norm"))
	require.NoError(t, err)
	twice, err := g.Closure(Forward, once)
	require.NoError(t, err)
	assert.ElementsMatch(t, Names(once), Names(twice))
}

func TestClosure_ReverseThenForwardIsSuperset(t *testing.T) {
	t.Parallel()
	g := normGraph()
	seeds := ids("rms_norm")

	retest, err := g.Closure(Reverse, seeds)
	require.NoError(t, err)
	compile, err := g.Closure(Forward, retest)
	require.NoError(t, err)

	assert.Subset(t, Names(retest), Names(seeds))
	assert.Subset(t, Names(compile), Names(retest))
	assert.Equal(t, []string{"rms_norm", "add_rms_norm"}, Names(retest))
	assert.Equal(t, []string{"rms_norm", "norm.common", "add_rms_norm"}, Names(compile))
}
