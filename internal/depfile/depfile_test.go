package depfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jward/opimpact/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) *Config {
	t.Helper()
	cfg, err := Parse(strings.NewReader(src), nil)
	require.NoError(t, err)
	return cfg
}

func edgesFrom(cfg *Config, from string) []string {
	var out []string
	for _, e := range cfg.Edges {
		if e.From == from {
			out = append(out, e.To)
		}
	}
	return out
}

func TestParse_CommonIsRekeyed(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, `
--category norm --op rms_norm --deps common
--category norm --op common
`)

	names := make([]string, len(cfg.Operators))
	for i, op := range cfg.Operators {
		names[i] = op.Name()
	}
	assert.Equal(t, []string{"rms_norm", "norm.common"}, names)
	assert.Equal(t, []string{"norm.common"}, edgesFrom(cfg, "rms_norm"))
	assert.Empty(t, edgesFrom(cfg, "norm.common"))
	assert.Equal(t, []string{"norm"}, cfg.Categories)
}

func TestParse_ImplicitCommonNode(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, `
--category pooling --op max_pool_v3
--category pooling --op avg_pool3_d --deps max_pool_v3
`)

	g := cfg.Graph()
	assert.True(t, g.Has("pooling.common"))
	assert.Equal(t, []string{"pooling.common"}, edgesFrom(cfg, "max_pool_v3"))
	assert.Equal(t, []string{"max_pool_v3", "pooling.common"}, edgesFrom(cfg, "avg_pool3_d"))
	assert.Equal(t, []string{"max_pool_v3", "avg_pool3_d", "pooling.common"}, cfg.ByCategory["pooling"])
}

func TestParse_TagOrderIndependent(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, "--deps gather_v2 scatter --op index_put_v2 --category index\n")

	require.Len(t, cfg.Operators, 2)
	assert.Equal(t, graph.NormalizeID("index", "index_put_v2"), cfg.Operators[0].ID)
	assert.Equal(t, []string{"gather_v2", "scatter", "index.common"}, edgesFrom(cfg, "index_put_v2"))
}

func TestParse_RepeatedRecordsMerge(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, `
# one record per compute unit
--category conv --op conv3d_v2 --deps common --compute-units ascend910b
--category conv --op conv3d_v2 --deps conv2d_v2 common --compute-units ascend950
--category conv --op conv2d_v2
`)

	g := cfg.Graph()
	op, ok := g.Operator("conv3d_v2")
	require.True(t, ok)
	assert.Equal(t, []string{"ascend910b", "ascend950"}, op.ComputeUnits)
	assert.Equal(t, []string{"conv.common", "conv2d_v2"}, edgesFrom(cfg, "conv3d_v2"))
}

func TestParse_CrossCategoryCommonDependency(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, `
--category matmul --op mat_mul_v3
--category loss --op fused_loss --deps matmul.common mat_mul_v3
`)
	assert.Equal(t, []string{"matmul.common", "mat_mul_v3", "loss.common"}, edgesFrom(cfg, "fused_loss"))
	assert.Equal(t, []string{"matmul", "loss"}, cfg.Categories)
}

func TestParse_UnknownTagSkipped(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, "--category rnn --op dynamic_rnn --owner someone --deps common\n")
	assert.Equal(t, []string{"rnn.common"}, edgesFrom(cfg, "dynamic_rnn"))
}

func TestParse_DeclaredButUnknownDependencyKept(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, "--category quant --op ascend_quant --deps not_declared\n")

	g := cfg.Graph()
	assert.False(t, g.Has("not_declared"))
	assert.Equal(t, []string{"not_declared", "quant.common"}, edgesFrom(cfg, "ascend_quant"))
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing category", "--op relu\n", 1},
		{"missing op", "\n--category activation --deps common\n", 2},
		{"value before tag", "relu --category activation --op relu\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.src), nil)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	cfg := parseString(t, "\n# nothing here\n")
	assert.Empty(t, cfg.Operators)
	assert.Empty(t, cfg.Edges)
	assert.Equal(t, 0, cfg.Graph().Len())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("--category norm --op rms_norm --deps common\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Len(t, cfg.Operators, 2)
}
