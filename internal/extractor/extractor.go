package extractor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/goblocks/pkg/types"
)

// Mode identifies which of the two scanner states the extractor is in
type Mode int

const (
	// ModeOutsideBlock scans for a declaration start while routing
	// header lines and buffering pending comments.
	ModeOutsideBlock Mode = iota
	// ModeInsideBlock accumulates the current block until its brace
	// depth returns to zero or below.
	ModeInsideBlock
)

// String returns the mode name used in logs and test output
func (m Mode) String() string {
	switch m {
	case ModeOutsideBlock:
		return "outside-block"
	case ModeInsideBlock:
		return "inside-block"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Options control the two documented behavior choices of the scanner
type Options struct {
	// AttachComments buffers comment-only lines seen outside a block and
	// prepends them to the next block that starts. When false, comments
	// are routed purely by position: header before the first declaration,
	// dropped after it.
	AttachComments bool

	// FlushTrailing emits a block still open at end of input as a final
	// block with Terminated=false. When false the partial block is
	// discarded, the historical behavior of scanners that only finalize
	// on a closing line.
	FlushTrailing bool
}

// DefaultOptions returns the options used by New
func DefaultOptions() Options {
	return Options{
		AttachComments: true,
		FlushTrailing:  true,
	}
}

// Extractor splits flat source text into a header region and a sequence of
// top-level declaration blocks using a single-pass, line-oriented brace
// count. It is deliberately a text heuristic, not a lexer: brace characters
// inside string and comment literals are counted like any others, and
// unconventionally formatted declarations may be misread. The scan never
// fails; on input it cannot make sense of it degrades to fewer or zero
// blocks.
type Extractor struct {
	opts Options
}

// New creates an Extractor with DefaultOptions
func New() *Extractor {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates an Extractor with explicit options
func NewWithOptions(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// ExtractFile reads a source file and extracts its header and blocks
func (e *Extractor) ExtractFile(filePath string) (*types.ExtractResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result := e.ExtractSource(string(content))
	result.FilePath = filePath
	return result, nil
}

// ExtractSource extracts the header and blocks from raw source text. The
// scan is total: every input produces a result, in the worst case one with
// zero blocks and everything dropped.
func (e *Extractor) ExtractSource(src string) *types.ExtractResult {
	s := &scan{
		opts:   e.opts,
		result: &types.ExtractResult{},
	}

	lines := splitLines(src)
	for i, line := range lines {
		s.line(i+1, line)
	}
	s.finish(len(lines))

	s.result.PackageName = s.result.Header.PackageName()
	return s.result
}

// scan holds the mutable state of one extraction pass: the current mode,
// the brace depth of the block under construction, and the comment buffer.
// A scan has a single owner and lives for exactly one ExtractSource call.
type scan struct {
	opts   Options
	result *types.ExtractResult

	mode      Mode
	depth     int
	declSeen  bool
	inImports bool

	cur *types.Block

	// Comment lines waiting for the next event to decide whether they
	// attach to a block, join the header, or drop.
	pending      []string
	pendingStart int
}

// line feeds one input line (1-based number) through the state machine
func (s *scan) line(num int, text string) {
	switch s.mode {
	case ModeInsideBlock:
		s.cur.Lines = append(s.cur.Lines, text)
		s.depth += braceNet(text)
		if s.depth <= 0 {
			s.finalize(num, true)
		}
	default:
		s.outside(num, text)
	}
}

// outside handles one line in ModeOutsideBlock
func (s *scan) outside(num int, text string) {
	// Interior and closing lines of an open import group stay with the
	// header; the group was opened before any declaration was seen.
	if s.inImports {
		s.result.Header.Lines = append(s.result.Header.Lines, text)
		if strings.HasPrefix(strings.TrimSpace(text), ")") {
			s.inImports = false
		}
		return
	}

	if isDeclStart(text) {
		s.startBlock(num, text)
		return
	}

	if s.opts.AttachComments && isCommentLine(text) {
		if len(s.pending) == 0 {
			s.pendingStart = num
		}
		s.pending = append(s.pending, text)
		return
	}

	switch {
	case isPackageLine(text), isImportLine(text):
		s.flushPending()
		if s.declSeen {
			s.result.DroppedLines++
			return
		}
		s.result.Header.Lines = append(s.result.Header.Lines, text)
		if isImportLine(text) && opensImportGroup(text) {
			s.inImports = true
		}
	case strings.TrimSpace(text) == "", isCommentLine(text):
		s.flushPending()
		if s.declSeen {
			s.result.DroppedLines++
			return
		}
		s.result.Header.Lines = append(s.result.Header.Lines, text)
	default:
		s.flushPending()
		s.result.DroppedLines++
	}
}

// startBlock opens a block at a declaration-start line and runs the same
// completion check used for every later line, so declarations that open
// and close on one physical line share the finalize path with multi-line
// bodies.
func (s *scan) startBlock(num int, text string) {
	s.declSeen = true
	s.mode = ModeInsideBlock

	s.cur = &types.Block{StartLine: num}
	if len(s.pending) > 0 {
		s.cur.Comments = s.pending
		s.cur.StartLine = s.pendingStart
		s.pending = nil
	}
	s.cur.Lines = []string{text}

	s.depth = braceNet(text)
	if s.depth > 0 {
		return
	}

	// Depth is already <= 0. Either the body opened and closed on this
	// line, or this is a brace-less single-line form (type alias,
	// function type, named basic type). A line that looks like it opens
	// a struct or interface body further down stays open instead.
	if strings.Contains(text, "{") || !looksLikeBodyOpener(text) {
		s.finalize(num, true)
	}
}

// finalize seals the current block and returns to ModeOutsideBlock
func (s *scan) finalize(endLine int, terminated bool) {
	s.cur.EndLine = endLine
	s.cur.Terminated = terminated
	classify(s.cur)
	s.result.Blocks = append(s.result.Blocks, s.cur)
	s.cur = nil
	s.depth = 0
	s.mode = ModeOutsideBlock
}

// finish runs end-of-input handling: an open block is flushed or discarded
// per Options.FlushTrailing, and leftover pending comments are routed
// positionally.
func (s *scan) finish(lastLine int) {
	if s.mode == ModeInsideBlock {
		if s.opts.FlushTrailing {
			s.finalize(lastLine, false)
		} else {
			s.result.DroppedLines += s.cur.LineCount()
			s.cur = nil
			s.depth = 0
			s.mode = ModeOutsideBlock
		}
		return
	}
	s.flushPending()
}

// flushPending routes buffered comment lines by position: header before
// the first declaration, dropped after it.
func (s *scan) flushPending() {
	if len(s.pending) == 0 {
		return
	}
	if s.declSeen {
		s.result.DroppedLines += len(s.pending)
	} else {
		s.result.Header.Lines = append(s.result.Header.Lines, s.pending...)
	}
	s.pending = nil
}

// splitLines splits source text into lines without trailing newlines. A
// file's final newline terminates the last line rather than opening an
// empty one.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(src, "\n"), "\n")
}

// braceNet returns the net brace count of one line
func braceNet(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// isDeclStart reports whether the line begins with the func or type
// keyword token. Indented declarations do not count: top-level
// declarations start in column one.
func isDeclStart(line string) bool {
	rest, ok := strings.CutPrefix(line, "func")
	if !ok {
		rest, ok = strings.CutPrefix(line, "type")
	}
	if !ok || rest == "" {
		return false
	}
	return rest[0] == ' ' || rest[0] == '\t'
}

// isCommentLine reports whether the line is a full-line comment
func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//")
}

// isPackageLine reports whether the line is a package clause
func isPackageLine(line string) bool {
	return strings.HasPrefix(line, "package ")
}

// isImportLine reports whether the line opens an import statement
func isImportLine(line string) bool {
	return strings.HasPrefix(line, "import ")
}

// opensImportGroup reports whether an import line opens a parenthesized
// group that closes on a later line.
func opensImportGroup(line string) bool {
	return strings.Contains(line, "(") && !strings.Contains(line, ")")
}

// looksLikeBodyOpener reports whether a brace-less declaration line reads
// like it opens a struct or interface body on a later line, in which case
// the single-line shortcut must not fire.
func looksLikeBodyOpener(line string) bool {
	return strings.Contains(line, " struct ") ||
		strings.Contains(line, " interface ") ||
		strings.HasSuffix(strings.TrimSpace(line), "{")
}
