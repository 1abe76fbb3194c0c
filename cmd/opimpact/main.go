package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/opimpact/internal/config"
)

var (
	flagDB        string
	flagFormat    string
	flagVerbose   bool
	flagConfig    string
	flagRepoRoot  string
	flagBuildRoot string
	flagDepsFile  string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// settings and logger are resolved once per invocation in PersistentPreRunE.
var (
	settings config.Settings
	logger   = slog.New(slog.DiscardHandler)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "opimpact",
	Short: "Change-impact resolution for operator builds",
	Long: "opimpact maps changed repository paths to the operators that must be retested " +
		"and compiled, per test kind and platform variant.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return loadSettings()
	},
	// No Run: prints help.
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagFormat, "format", "text", "output format: text|json")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log debug diagnostics to stderr")
	pf.StringVar(&flagConfig, "config", "", "settings file (default: "+config.FileName+" at repo root)")
	pf.StringVar(&flagRepoRoot, "repo-root", "", "repository root (default: nearest .git ancestor of cwd)")
	pf.StringVar(&flagBuildRoot, "build-root", "", "build directory holding the dependency artifact")
	pf.StringVar(&flagDepsFile, "deps-file", "", "dependency artifact path, overrides --build-root")
	pf.StringVar(&flagDB, "db", "", "snapshot database path (default: .opimpact/graph.db relative to repo root)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

// loadSettings resolves settings from defaults, the settings file, the
// environment and finally the command-line flags, then builds the logger.
func loadSettings() error {
	root := flagRepoRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting cwd: %w", err)
		}
		root = findRepoRoot(cwd)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving repo root %q: %w", root, err)
	}

	s, err := config.Load(abs, flagConfig)
	if err != nil {
		return err
	}
	if flagRepoRoot != "" && s.RepoRoot != abs {
		if s.BuildRoot == filepath.Join(s.RepoRoot, "build") {
			s.BuildRoot = filepath.Join(abs, "build")
		}
		s.RepoRoot = abs
	}
	if flagBuildRoot != "" {
		s.BuildRoot = flagBuildRoot
	}
	if flagDepsFile != "" {
		s.DepsFile = flagDepsFile
	}
	if flagVerbose {
		s.LogLevel = "debug"
	}

	level, err := config.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	settings = s
	logger = newLogger(os.Stderr, flagFormat, level)
	return nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the snapshot path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".opimpact", "graph.db")
}
