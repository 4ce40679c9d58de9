// Package extractor splits flat Go source text into a header region and a
// sequence of top-level declaration blocks using a line-oriented,
// brace-depth heuristic.
//
// The scanner is a two-mode state machine. Outside a block it routes lines
// to the header (package clause, imports, leading comments and blanks),
// buffers comment lines for attribution, or recognizes a declaration start
// (a line beginning with the func or type keyword). Inside a block it
// appends lines and tracks the net count of brace characters; the block
// finalizes on the line where the count returns to zero or below.
//
// # Basic Usage
//
//	e := extractor.New()
//	result, err := e.ExtractFile("/path/to/file.go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s: %d blocks\n", result.PackageName, result.BlockCount())
//	for _, block := range result.Blocks {
//	    fmt.Printf("  %s %s (lines %d-%d)\n", block.Kind, block.Name, block.StartLine, block.EndLine)
//	}
//
// ExtractSource runs the same scan over text already in memory and cannot
// fail:
//
//	result := e.ExtractSource(src)
//
// # Behavior Options
//
// Two documented behavior choices are exposed through Options:
//
//	e := extractor.NewWithOptions(extractor.Options{
//	    AttachComments: true, // comments directly above a declaration join its block
//	    FlushTrailing:  true, // a block left open at EOF is emitted with Terminated=false
//	})
//
// With AttachComments disabled, comment lines are routed purely by
// position: header before the first declaration, dropped after it. With
// FlushTrailing disabled, a block whose braces never close is silently
// discarded.
//
// # Limitations
//
// This is an intentional text heuristic, not a parser. Brace characters
// inside string literals and comments are counted like any others; a
// declaration whose opening brace sits alone on the next line is read as a
// single-line declaration; lines that merely start with "func" or "type"
// are taken at their word. Inputs that break these assumptions degrade the
// split but never fail it. Do not substitute go/parser here: tolerating
// malformed and partial input is the contract.
package extractor
