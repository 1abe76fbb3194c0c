package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// formatBucketsText prints one result line per bucket. Nothing is printed for
// an empty resolution.
func formatBucketsText(w io.Writer, buckets []CLIBucket) {
	for _, b := range buckets {
		fmt.Fprintln(w, b.Line)
	}
}

// formatOperatorsText formats CLIOperator results as aligned columns.
func formatOperatorsText(w io.Writer, ops []CLIOperator) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tCOMPUTE UNITS")
	for _, op := range ops {
		units := strings.Join(op.ComputeUnits, ",")
		if units == "" {
			units = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name, op.Category, units)
	}
	tw.Flush()
}

func formatSnapshotText(w io.Writer, snap CLISnapshot) {
	fmt.Fprintf(w, "Source: %s\n", snap.Source)
	fmt.Fprintf(w, "Database: %s\n", snap.Database)
	fmt.Fprintf(w, "Loaded: %s\n", snap.LoadedAt)
	fmt.Fprintf(w, "Categories: %d\n", snap.Categories)
	fmt.Fprintf(w, "Operators: %d\n", snap.Operators)
	fmt.Fprintf(w, "Dependencies: %d\n", snap.Dependencies)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIBucket:
		formatBucketsText(w, v)
	case []CLIOperator:
		formatOperatorsText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case CLISnapshot:
		formatSnapshotText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
