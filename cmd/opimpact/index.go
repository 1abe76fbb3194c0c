package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/opimpact/internal/depfile"
	"github.com/jward/opimpact/internal/store"
)

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Snapshot the dependency graph into SQLite",
	Long: "Loads the dependency artifact and writes its categories, operators and edges " +
		"to the snapshot database used by the query commands.",
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete the snapshot database and rebuild it")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	depsPath := settings.DepsPath()
	dbPath := resolveDBPath(settings.RepoRoot)

	cfg, err := depfile.Load(depsPath, logger)
	if err != nil {
		return outputError("index", fmt.Errorf("load config: %w", err))
	}
	g := cfg.Graph()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError("index", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
	}
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return outputError("index", fmt.Errorf("removing database for --force: %w", err))
		}
		logger.Info("cleared snapshot", "db", dbPath)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return outputError("index", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return outputError("index", err)
	}

	loadedAt := time.Now()
	if err := s.WriteGraph(g, depsPath, loadedAt); err != nil {
		return outputError("index", err)
	}
	logger.Info("indexed", "operators", g.Len(), "categories", len(g.Categories()),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return outputResult(CLIResult{
		Command: "index",
		Results: CLISnapshot{
			Source:       depsPath,
			Database:     dbPath,
			LoadedAt:     loadedAt.UTC().Format(time.RFC3339),
			Categories:   len(g.Categories()),
			Operators:    g.Len(),
			Dependencies: len(g.Edges()),
		},
	})
}
