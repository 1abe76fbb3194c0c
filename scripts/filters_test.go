package scripts_test

import (
	"context"
	"io/fs"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/opimpact/internal/classify"
	"github.com/jward/opimpact/internal/runtime"
	"github.com/jward/opimpact/scripts"
)

func parse(t *testing.T, rel string) classify.Path {
	t.Helper()
	p, ok := classify.New([]string{"pooling", "norm"}, classify.Options{}).Parse(rel)
	require.True(t, ok, rel)
	return p
}

func loadBuiltin(t *testing.T, name string) *runtime.PathFilter {
	t.Helper()
	f, err := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS)).
		LoadFilter(path.Join(scripts.Dir, name+".risor"))
	require.NoError(t, err)
	return f
}

func TestBuiltinFilters_AllEvaluateToBool(t *testing.T) {
	t.Parallel()
	entries, err := fs.ReadDir(scripts.FS, scripts.Dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	p := parse(t, "norm/rms_norm/op_kernel/rms_norm.cpp")
	for _, e := range entries {
		name := e.Name()[:len(e.Name())-len(path.Ext(e.Name()))]
		_, err := loadBuiltin(t, name).Exclude(context.Background(), p)
		assert.NoError(t, err, name)
	}
}

func TestSkipTests(t *testing.T) {
	t.Parallel()
	f := loadBuiltin(t, "skip_tests")

	tests := []struct {
		rel  string
		want bool
	}{
		{"pooling/avg_pool3_d/tests/ut/op_host/test_aclnn_avgpool3d.cpp", true},
		{"pooling/avg_pool3_d/op_host/avg_pool3_d_tiling.cpp", false},
		{"norm/common/utils.h", false},
	}
	for _, tt := range tests {
		got, err := f.Exclude(context.Background(), parse(t, tt.rel))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.rel)
	}
}

func TestSkipGraph(t *testing.T) {
	t.Parallel()
	f := loadBuiltin(t, "skip_graph")

	got, err := f.Exclude(context.Background(), parse(t, "norm/rms_norm/op_graph/rms_norm_proto.h"))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = f.Exclude(context.Background(), parse(t, "norm/rms_norm/op_kernel/rms_norm.cpp"))
	require.NoError(t, err)
	assert.False(t, got)
}
