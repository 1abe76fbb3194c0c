package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jward/opimpact/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPath(t *testing.T, rel string) classify.Path {
	t.Helper()
	c := classify.New([]string{"norm", "index"}, classify.Options{})
	p, ok := c.Parse(rel)
	require.True(t, ok, rel)
	return p
}

func TestFilter_ExcludesOnTrue(t *testing.T) {
	t.Parallel()
	f := NewRuntime("").FilterSource(`path == "norm/rms_norm/op_kernel/generated.cpp"`)

	excluded, err := f.Exclude(context.Background(), testPath(t, "norm/rms_norm/op_kernel/generated.cpp"))
	require.NoError(t, err)
	assert.True(t, excluded)

	excluded, err = f.Exclude(context.Background(), testPath(t, "norm/rms_norm/op_kernel/rms_norm.cpp"))
	require.NoError(t, err)
	assert.False(t, excluded)
}

func TestFilter_SeesCategoryOperatorSegments(t *testing.T) {
	t.Parallel()
	f := NewRuntime("").FilterSource(`category == "index" && operator == "index.common" && len(segments) == 3`)

	excluded, err := f.Exclude(context.Background(), testPath(t, "index/common/index_util.h"))
	require.NoError(t, err)
	assert.True(t, excluded)

	excluded, err = f.Exclude(context.Background(), testPath(t, "index/scatter/op_host/scatter.cpp"))
	require.NoError(t, err)
	assert.False(t, excluded)
}

func TestFilter_NonBoolResult(t *testing.T) {
	t.Parallel()
	f := NewRuntime("").FilterSource(`42`)
	_, err := f.Exclude(context.Background(), testPath(t, "norm/rms_norm/op_kernel/a.cpp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a bool")
}

func TestFilter_ScriptError(t *testing.T) {
	t.Parallel()
	f := NewRuntime("").FilterSource(`no_such_function(path)`)
	_, err := f.Exclude(context.Background(), testPath(t, "norm/rms_norm/op_kernel/a.cpp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<inline>")
}

func TestLoadFilter_FromDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip_common.risor"), []byte(`category == "norm"`), 0o644))

	f, err := NewRuntime(dir).LoadFilter("skip_common.risor")
	require.NoError(t, err)

	excluded, err := f.Exclude(context.Background(), testPath(t, "norm/common/utils.h"))
	require.NoError(t, err)
	assert.True(t, excluded)
}

func TestLoadFilter_FromFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"filters/never.risor": &fstest.MapFile{Data: []byte(`false`)},
	}

	f, err := NewRuntime("", WithRuntimeFS(fsys)).LoadFilter("/filters/never.risor")
	require.NoError(t, err)

	excluded, err := f.Exclude(context.Background(), testPath(t, "norm/common/utils.h"))
	require.NoError(t, err)
	assert.False(t, excluded)
}

func TestLoadFilter_Missing(t *testing.T) {
	t.Parallel()
	_, err := NewRuntime(t.TempDir()).LoadFilter("absent.risor")
	require.Error(t, err)
}
