// Package scripts bundles the built-in Risor path filters.
package scripts

import "embed"

// FS holds the filters under filters/, addressed as "filters/<name>.risor":
//
//	skip_tests  excludes sources under an operator's tests/ tree
//	skip_graph  excludes graph-mode definitions under op_graph/
//
//go:embed filters/*.risor
var FS embed.FS

// Dir is the directory of the built-in filters inside FS.
const Dir = "filters"
