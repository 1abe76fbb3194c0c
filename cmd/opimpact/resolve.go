package main

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/opimpact"
	"github.com/jward/opimpact/internal/config"
	"github.com/jward/opimpact/internal/runtime"
	"github.com/jward/opimpact/scripts"
)

var (
	flagDiff         bool
	flagFilterScript string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <changed-files> [experimental]",
	Short: "Print the retest and compile sets for a change list",
	Long: "Reads a changed-file list (one path per line, or a unified diff with --diff) and prints " +
		"one line per affected test kind and platform variant:\n\n" +
		"  <kind>:<retest operators>:<compile operators>:<platform label>\n\n" +
		"The optional second argument enables the experimental tree (true/false).\n\n" +
		"On failure nothing is written to stdout; the error goes to stderr (as a JSON envelope with --format json).",
	Args: cobra.RangeArgs(1, 2),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&flagDiff, "diff", false, "treat <changed-files> as a unified diff")
	resolveCmd.Flags().StringVar(&flagFilterScript, "filter-script", "", "Risor script (or builtin:<name>) that excludes paths when it evaluates to true")
}

func runResolve(cmd *cobra.Command, args []string) error {
	experimental := false
	if len(args) > 1 {
		v, err := config.ParseFlag(args[1])
		if err != nil {
			return outputError("resolve", fmt.Errorf("experimental flag: %w", err))
		}
		experimental = v
	}

	changed, err := readChanges(args[0])
	if err != nil {
		return outputError("resolve", err)
	}

	opts, err := engineOptions(experimental)
	if err != nil {
		return outputError("resolve", err)
	}
	engine, err := opimpact.New(settings.DepsPath(), opts...)
	if err != nil {
		return outputError("resolve", err)
	}

	buckets, err := engine.Resolve(context.Background(), changed)
	if err != nil {
		return outputError("resolve", err)
	}

	results := make([]CLIBucket, 0, len(buckets))
	for _, b := range buckets {
		results = append(results, bucketToCLI(b))
	}
	return outputResult(CLIResult{Command: "resolve", Results: results})
}

func readChanges(path string) ([]string, error) {
	if flagDiff {
		return opimpact.ReadDiff(path)
	}
	return opimpact.ReadChangeList(path)
}

// engineOptions maps the resolved settings onto Engine options.
func engineOptions(experimental bool) ([]opimpact.Option, error) {
	opts := []opimpact.Option{
		opimpact.WithRepoRoot(settings.RepoRoot),
		opimpact.WithClassifyOptions(settings.ClassifyOptions(experimental)),
		opimpact.WithParallel(settings.Parallel),
		opimpact.WithLogger(logger),
	}
	if flagFilterScript != "" {
		filter, err := loadFilter(flagFilterScript)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opimpact.WithFilter(filter))
	}
	return opts, nil
}

// builtinPrefix selects a filter bundled in the scripts package.
const builtinPrefix = "builtin:"

// loadFilter loads a Risor filter from disk, or from the bundled scripts when
// name is "builtin:<filter>".
func loadFilter(name string) (*runtime.PathFilter, error) {
	if builtin, ok := strings.CutPrefix(name, builtinPrefix); ok {
		rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS), runtime.WithRuntimeLogger(logger))
		return rt.LoadFilter(path.Join(scripts.Dir, builtin+".risor"))
	}
	script, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("resolving filter script %q: %w", name, err)
	}
	rt := runtime.NewRuntime(filepath.Dir(script), runtime.WithRuntimeLogger(logger))
	return rt.LoadFilter(filepath.Base(script))
}

func bucketToCLI(b opimpact.Bucket) CLIBucket {
	return CLIBucket{
		Kind:     string(b.Kind),
		Platform: b.Platform.Name,
		Label:    b.Platform.Label,
		Touched:  idNames(b.Touched),
		Retest:   idNames(b.Retest),
		Compile:  idNames(b.Compile),
		Line:     b.Line(),
	}
}

func idNames(ids []opimpact.ID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}
