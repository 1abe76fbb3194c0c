package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/opimpact/internal/classify"
)

// Runtime embeds a Risor VM for user path-filter scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger routes the scripts' log.info/warn/error calls to logger.
func WithRuntimeLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on that filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// PathFilter excludes changed paths for which its script evaluates to true.
type PathFilter struct {
	rt     *Runtime
	source string
	label  string
}

// LoadFilter reads a filter script from path.
func (r *Runtime) LoadFilter(path string) (*PathFilter, error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return &PathFilter{rt: r, source: src, label: path}, nil
}

// FilterSource wraps inline Risor source as a filter.
func (r *Runtime) FilterSource(source string) *PathFilter {
	return &PathFilter{rt: r, source: source, label: "<inline>"}
}

// Exclude evaluates the script for p. The script sees the globals path,
// segments, category and operator, and must end in a bool expression.
func (f *PathFilter) Exclude(ctx context.Context, p classify.Path) (bool, error) {
	globals := map[string]any{
		"path":     object.NewString(p.Rel),
		"segments": stringList(p.Segments),
		"category": object.NewString(p.Category),
		"operator": object.NewString(p.Operator.String()),
		"log":      mustProxy(&logObject{logger: f.rt.logger, script: f.label}),
	}

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	result, err := risor.Eval(ctx, f.source, opts...)
	if err != nil {
		return false, fmt.Errorf("runtime: script %s: %w", f.label, err)
	}
	b, ok := result.(*object.Bool)
	if !ok {
		return false, fmt.Errorf("runtime: script %s: result must be a bool, got %s", f.label, typeName(result))
	}
	return b.Value(), nil
}

func typeName(obj object.Object) string {
	if obj == nil {
		return "nil"
	}
	return string(obj.Type())
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
