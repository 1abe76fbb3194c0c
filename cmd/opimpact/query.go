package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/opimpact"
	"github.com/jward/opimpact/internal/store"
)

var flagCategory string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the dependency graph snapshot",
	Long:  "Run queries against the snapshot written by 'opimpact index'. Closures keep depth-first discovery order.",
}

func init() {
	queryCmd.AddCommand(depsCmd)
	queryCmd.AddCommand(dependentsCmd)
	queryCmd.AddCommand(operatorsCmd)
	queryCmd.AddCommand(categoriesCmd)
	queryCmd.AddCommand(snapshotCmd)

	operatorsCmd.Flags().StringVar(&flagCategory, "category", "", "only list operators of this category")
}

var depsCmd = &cobra.Command{
	Use:   "deps <operator>...",
	Short: "Operators the given operators need to build (forward closure)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClosure("deps", opimpact.Forward, args)
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <operator>...",
	Short: "Operators affected by a change to the given operators (reverse closure)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClosure("dependents", opimpact.Reverse, args)
	},
}

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List stored operators",
	Args:  cobra.NoArgs,
	RunE:  runOperators,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List stored categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show where the stored snapshot came from",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func runClosure(command string, dir opimpact.Direction, names []string) error {
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	results, err := closureOperators(s, dir, names)
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: results})
}

// closureOperators rebuilds the stored graph and returns the closure of names
// in discovery order, annotated with compute units.
func closureOperators(r store.Reader, dir opimpact.Direction, names []string) ([]CLIOperator, error) {
	g, err := r.LoadGraph()
	if err != nil {
		return nil, err
	}
	ids, err := opimpact.ClosureByName(g, dir, names)
	if err != nil {
		return nil, err
	}

	rows, err := r.OperatorsByName(idNames(ids))
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*store.Operator, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	results := make([]CLIOperator, 0, len(ids))
	for _, id := range ids {
		op := CLIOperator{Name: id.String(), Category: id.Category}
		if row, ok := byName[op.Name]; ok {
			op.ComputeUnits = row.ComputeUnits
		}
		results = append(results, op)
	}
	return results, nil
}

func runOperators(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("operators", err)
	}
	defer s.Close()

	var rows []*store.Operator
	if flagCategory != "" {
		rows, err = s.OperatorsByCategory(flagCategory)
	} else {
		rows, err = s.AllOperators()
	}
	if err != nil {
		return outputError("operators", err)
	}

	results := make([]CLIOperator, 0, len(rows))
	for _, r := range rows {
		results = append(results, operatorToCLI(r))
	}
	return outputResult(CLIResult{Command: "operators", Results: results})
}

func runCategories(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("categories", err)
	}
	defer s.Close()

	names, err := s.Categories()
	if err != nil {
		return outputError("categories", err)
	}
	if names == nil {
		names = []string{}
	}
	return outputResult(CLIResult{Command: "categories", Results: names})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("snapshot", err)
	}
	defer s.Close()

	snap, err := s.Snapshot()
	if err != nil {
		return outputError("snapshot", err)
	}
	if snap == nil {
		return outputError("snapshot", fmt.Errorf("snapshot is empty (run 'opimpact index' first)"))
	}
	g, err := s.LoadGraph()
	if err != nil {
		return outputError("snapshot", err)
	}

	return outputResult(CLIResult{
		Command: "snapshot",
		Results: CLISnapshot{
			Source:       snap.Source,
			Database:     resolveDBPath(settings.RepoRoot),
			LoadedAt:     snap.LoadedAt.Format(time.RFC3339),
			Categories:   len(g.Categories()),
			Operators:    g.Len(),
			Dependencies: len(g.Edges()),
		},
	})
}

// --- Helpers ---

// openStore opens the snapshot database from the --db flag path (or default).
func openStore() (*store.Store, error) {
	dbPath := resolveDBPath(settings.RepoRoot)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'opimpact index' first)", dbPath)
	}
	return store.NewStore(dbPath)
}

func operatorToCLI(r *store.Operator) CLIOperator {
	return CLIOperator{
		Name:         r.Name,
		Category:     r.Category,
		ComputeUnits: r.ComputeUnits,
	}
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format to stderr and returns it
// so RunE can propagate it to Cobra. Stdout stays empty on failure.
func outputError(command string, err error) error {
	errorHandled = true
	writeError(os.Stderr, flagFormat, command, err)
	return err
}

// writeError renders err as a CLIResult envelope in JSON mode and as a plain
// line otherwise.
func writeError(w io.Writer, format, command string, err error) {
	if format != "json" {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{
		Command: command,
		Error:   err.Error(),
	})
}
