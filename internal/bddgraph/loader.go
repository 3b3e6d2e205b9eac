package bddgraph

// Loader turns raw per-call-path symbolic-execution logs into an initial
// BDD. Per spec.md §1 this parser is an external collaborator named only
// by its interface — "a straightforward loader" out of scope for this
// toolchain — so no concrete implementation lives here; cmd/bdd-generator
// wires one in only when it has a real log format to parse, and reports
// exit code 2 (unsupported configuration) otherwise.
type Loader interface {
	// Load builds a BDD from the given call-path log sources, using bl to
	// construct nodes incrementally.
	Load(bl *Builder, callPaths []string) error
}
