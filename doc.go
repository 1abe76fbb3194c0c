// Package opimpact resolves which operators of an operator library must be
// rebuilt and retested after a change.
//
// # Pipeline
//
// A resolution runs four steps in sequence:
//
//  1. Load: parse the dependency artifact written by the build configuration
//     step into operators and dependency edges. Every operator implicitly
//     depends on its category's common node.
//
//  2. Graph: materialize forward (requires) and reverse (required by)
//     adjacency over the loaded operators.
//
//  3. Classify: map each changed path to the operator it touches, once per
//     test kind (opapi, ophost, opkernel), under the first platform variant
//     whose directory the path lives in, or the default variant.
//
//  4. Close: for every (test kind, platform) bucket with touched operators S,
//     compute R = reverse closure of S (what must be retested) and
//     K = forward closure of R (what must be compiled).
//
// # Usage
//
//	e, err := opimpact.New("build/op_dependency.txt", opimpact.WithRepoRoot(root))
//	if err != nil { ... }
//
//	paths, err := opimpact.ReadChangeList("changed_files.txt")
//	buckets, err := e.Resolve(ctx, paths)
//	for _, b := range buckets {
//		fmt.Println(b.Line())
//	}
//
// Each line reads "<kind>:<retest;...>:<compile;...>:<platform label>".
// No buckets means nothing needs rebuilding.
//
// # Errors
//
// A closure that reaches a name missing from the artifact fails the whole
// resolution with an [UnknownOperatorError]; no partial results are returned.
package opimpact
