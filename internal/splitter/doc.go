// Package splitter regroups extracted declaration blocks into output files
// and writes them.
//
// A Splitter builds a Plan from one extraction result: every block is
// assigned to exactly one planned file, files appear in first-use order,
// and blocks keep their input order within a file. Rendering repeats the
// source header (package clause and imports) at the top of every file.
//
// # Strategies
//
// Three grouping strategies exist:
//
//   - StrategyReceiver (default): each type keeps its methods and the
//     constructors named after it (NewServer lands with Server); leftover
//     functions collect in funcs.go.
//   - StrategyKind: three fixed buckets (types.go, funcs.go, methods.go).
//   - StrategyDecl: one file per declaration, methods prefixed with their
//     receiver (server_start.go).
//
// # Usage
//
//	sp, err := splitter.NewWithStrategy(splitter.StrategyReceiver)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plan, err := sp.Plan(result)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	written, err := sp.Write(plan, splitter.WriteOptions{OutputDir: "out"})
//
// # Output Caveat
//
// Every rendered file carries the full original import set, so most splits
// need a goimports pass before they compile. The splitter moves text; it
// does not resolve which imports each fragment uses.
package splitter
