// Package depfile loads the operator dependency artifact written by the build
// configuration step.
//
// Each non-blank, non-comment line is one record of tagged fields:
//
//	--category norm --op rms_norm --deps common add_rms_norm --compute-units ascend910b
//
// Tags may appear in any order. Values following --deps or --compute-units
// accumulate until the next tag.
package depfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jward/opimpact/internal/graph"
)

// DefaultFileName is the artifact name under the build root.
const DefaultFileName = "op_dependency.txt"

const (
	tagCategory     = "--category"
	tagOp           = "--op"
	tagDeps         = "--deps"
	tagComputeUnits = "--compute-units"
)

// ErrNotFound is returned when the artifact does not exist.
var ErrNotFound = errors.New("dependency file not found")

// ParseError reports a malformed record.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Record is one parsed line with names already normalized.
type Record struct {
	ID           graph.ID
	Deps         []string
	ComputeUnits []string
}

// Config is the loaded artifact: operators grouped by category plus the raw
// dependency edge list, including the implicit edges to category common nodes.
type Config struct {
	Operators  []*graph.Operator
	Edges      []graph.Edge
	Categories []string
	// ByCategory lists operator names per category in declaration order.
	ByCategory map[string][]string
}

// Graph builds the dependency graph for the loaded configuration.
func (c *Config) Graph() *graph.Graph {
	return graph.Build(c.Operators, c.Edges)
}

// Load reads and parses the artifact at path.
func Load(path string, logger *slog.Logger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open dependency file: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads records from r. A nil logger discards diagnostics.
func Parse(r io.Reader, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := newBuilder()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseRecord(line, lineNo, logger)
		if err != nil {
			return nil, err
		}
		b.add(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dependency records: %w", err)
	}

	cfg := b.finish()
	logger.Debug("dependency file parsed",
		"records", lineNo, "operators", len(cfg.Operators),
		"edges", len(cfg.Edges), "categories", len(cfg.Categories))
	return cfg, nil
}

// parseRecord decodes one tagged-field line.
func parseRecord(line string, lineNo int, logger *slog.Logger) (Record, error) {
	var (
		category, name string
		deps, units    []string
		active         string
	)
	for _, tok := range strings.Fields(line) {
		if strings.HasPrefix(tok, "--") {
			active = tok
			switch tok {
			case tagCategory, tagOp, tagDeps, tagComputeUnits:
			default:
				logger.Debug("skipping unknown tag", "line", lineNo, "tag", tok)
			}
			continue
		}
		switch active {
		case tagCategory:
			category = tok
		case tagOp:
			name = tok
		case tagDeps:
			deps = append(deps, tok)
		case tagComputeUnits:
			units = append(units, tok)
		case "":
			return Record{}, &ParseError{Line: lineNo, Msg: fmt.Sprintf("value %q before any tag", tok)}
		}
	}
	if category == "" {
		return Record{}, &ParseError{Line: lineNo, Msg: "missing " + tagCategory}
	}
	if name == "" {
		return Record{}, &ParseError{Line: lineNo, Msg: "missing " + tagOp}
	}

	rec := Record{ID: graph.NormalizeID(category, name), ComputeUnits: units}
	for _, d := range deps {
		rec.Deps = append(rec.Deps, graph.DependencyName(category, d))
	}
	return rec, nil
}

// builder merges records and applies the category-common coupling.
type builder struct {
	ops        map[string]*graph.Operator
	order      []string
	deps       map[string][]string
	categories []string
	byCategory map[string][]string
}

func newBuilder() *builder {
	return &builder{
		ops:        make(map[string]*graph.Operator),
		deps:       make(map[string][]string),
		byCategory: make(map[string][]string),
	}
}

func (b *builder) declare(id graph.ID) *graph.Operator {
	name := id.String()
	if op, ok := b.ops[name]; ok {
		return op
	}
	op := &graph.Operator{ID: id}
	b.ops[name] = op
	b.order = append(b.order, name)
	if _, ok := b.byCategory[id.Category]; !ok {
		b.categories = append(b.categories, id.Category)
	}
	b.byCategory[id.Category] = append(b.byCategory[id.Category], name)
	return op
}

func (b *builder) add(rec Record) {
	op := b.declare(rec.ID)
	op.ComputeUnits = appendUnique(op.ComputeUnits, rec.ComputeUnits...)
	name := op.Name()
	b.deps[name] = appendUnique(b.deps[name], rec.Deps...)
}

// finish runs the second pass: every non-common operator depends on its
// category's common node, which is declared here when no record named it.
func (b *builder) finish() *Config {
	for _, category := range b.categories {
		common := graph.CommonID(category)
		b.declare(common)
		commonName := common.String()
		for _, name := range b.byCategory[category] {
			if name == commonName {
				continue
			}
			b.deps[name] = appendUnique(b.deps[name], commonName)
		}
	}

	cfg := &Config{
		Categories: append([]string(nil), b.categories...),
		ByCategory: b.byCategory,
	}
	for _, name := range b.order {
		cfg.Operators = append(cfg.Operators, b.ops[name])
		for _, dep := range b.deps[name] {
			cfg.Edges = append(cfg.Edges, graph.Edge{From: name, To: dep})
		}
	}
	return cfg
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
