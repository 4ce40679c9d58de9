package types

// ExtractResult represents the output of extracting one source file
type ExtractResult struct {
	// Source identification
	FilePath    string // As given to the extractor; "" for raw source input
	PackageName string // From the header's package clause, best effort

	// Extracted regions
	Header Header
	Blocks []*Block

	// Accounting
	DroppedLines int // Lines in neither the header nor any block
}

// BlockCount returns the number of extracted blocks. The count is
// heuristic: misclassified declarations are counted as the lines scanned,
// not as the language defines them.
func (er *ExtractResult) BlockCount() int {
	return len(er.Blocks)
}

// RetainedLines returns the number of input lines retained in the header
// or in some block.
func (er *ExtractResult) RetainedLines() int {
	n := er.Header.LineCount()
	for _, b := range er.Blocks {
		n += b.LineCount()
	}
	return n
}

// HasUnterminated returns true if any block was flushed at end of input
// with unbalanced braces.
func (er *ExtractResult) HasUnterminated() bool {
	for _, b := range er.Blocks {
		if !b.Terminated {
			return true
		}
	}
	return false
}

// BlocksOfKind returns the blocks of the given kind, in input order.
func (er *ExtractResult) BlocksOfKind(kind BlockKind) []*Block {
	var out []*Block
	for _, b := range er.Blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}
