package opimpact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/opimpact/internal/classify"
	"github.com/jward/opimpact/internal/depfile"
	"github.com/jward/opimpact/internal/graph"
)

// PathFilter lets callers drop eligible paths before they are matched.
type PathFilter interface {
	Exclude(ctx context.Context, p Path) (bool, error)
}

// Engine orchestrates a resolution: configuration load, graph build, path
// classification, and per-bucket closure computation. An Engine holds no
// per-run state; Resolve may be called repeatedly and concurrently.
type Engine struct {
	graph      *graph.Graph
	classifier *classify.Classifier
	repoRoot   string
	logger     *slog.Logger
	filter     PathFilter

	classifyOpts classify.Options

	// useParallel computes bucket closures concurrently.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRepoRoot sets the directory changed paths are resolved against.
// Defaults to the working directory.
func WithRepoRoot(root string) Option {
	return func(e *Engine) {
		e.repoRoot = root
	}
}

// WithClassifyOptions replaces every classifier setting at once. Options
// applied after it still override individual fields.
func WithClassifyOptions(opts ClassifyOptions) Option {
	return func(e *Engine) {
		e.classifyOpts = opts
	}
}

// WithExperimental enables the experimental tree offset.
func WithExperimental(enabled bool) Option {
	return func(e *Engine) {
		e.classifyOpts.Experimental = enabled
	}
}

// WithExperimentalDir names the experimental tree's leading segment.
func WithExperimentalDir(dir string) Option {
	return func(e *Engine) {
		e.classifyOpts.ExperimentalDir = dir
	}
}

// WithPlatforms replaces the platform variant enumeration. The default
// variant is always tried last.
func WithPlatforms(platforms ...Platform) Option {
	return func(e *Engine) {
		e.classifyOpts.Platforms = platforms
	}
}

// WithDenylist replaces the path substrings that are never classified.
func WithDenylist(substrings ...string) Option {
	return func(e *Engine) {
		e.classifyOpts.Denylist = substrings
	}
}

// WithParallel controls concurrent bucket computation. Output order is the
// bucket enumeration order either way.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithLogger sets the logger for diagnostics. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFilter installs an additional path filter, such as a Risor script.
func WithFilter(f PathFilter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// New loads the dependency artifact at depsPath and builds an Engine over it.
// A missing artifact is reported as depfile.ErrNotFound.
func New(depsPath string, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	cfg, err := depfile.Load(depsPath, e.logger)
	if err != nil {
		return nil, fmt.Errorf("opimpact: load config: %w", err)
	}
	return e.init(cfg.Graph())
}

// NewWithGraph builds an Engine over an already loaded graph.
func NewWithGraph(g *Graph, opts ...Option) (*Engine, error) {
	return newEngine(opts).init(g)
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		logger:      slog.New(slog.DiscardHandler),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) init(g *graph.Graph) (*Engine, error) {
	root := e.repoRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("opimpact: getting cwd: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("opimpact: resolving repo root %q: %w", root, err)
	}
	e.repoRoot = abs
	e.graph = g
	e.classifier = classify.New(g.Categories(), e.classifyOpts)
	e.logger.Debug("engine ready",
		"operators", g.Len(), "categories", len(g.Categories()), "repo_root", abs)
	return e, nil
}

// Graph returns the dependency graph.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// RepoRoot returns the absolute repository root.
func (e *Engine) RepoRoot() string {
	return e.repoRoot
}

// Platforms returns the platform variants in matching order.
func (e *Engine) Platforms() []Platform {
	return e.classifier.Platforms()
}

// relPath resolves a changed path against the repository root. Paths whose
// file no longer exists or that fall outside the root are skipped.
func (e *Engine) relPath(changed string) (string, bool) {
	abs := changed
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.repoRoot, changed)
	}
	if _, err := os.Stat(abs); err != nil {
		e.logger.Debug("skipping missing path", "path", changed)
		return "", false
	}
	rel, err := filepath.Rel(e.repoRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		e.logger.Debug("skipping path outside repo root", "path", changed)
		return "", false
	}
	return filepath.ToSlash(rel), true
}
