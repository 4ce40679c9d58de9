package splitter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/pkg/types"
)

var (
	// ErrUnknownStrategy is returned for a strategy name Plan does not know
	ErrUnknownStrategy = errors.New("unknown split strategy")
)

// Strategy selects how blocks are grouped into output files
type Strategy string

const (
	// StrategyDecl writes one file per declaration
	StrategyDecl Strategy = "decl"
	// StrategyKind groups declarations into types.go, funcs.go, and methods.go
	StrategyKind Strategy = "kind"
	// StrategyReceiver groups each type with its methods and constructors;
	// remaining functions land in funcs.go. This is the default.
	StrategyReceiver Strategy = "receiver"
)

// Validate checks if the strategy is one of the known values
func (s Strategy) Validate() error {
	switch s {
	case StrategyDecl, StrategyKind, StrategyReceiver:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}
}

// PlannedFile is one output file of a split plan: a name relative to the
// output directory and the blocks it will hold, in input order.
type PlannedFile struct {
	Name   string
	Blocks []*types.Block
}

// Plan maps every block of one extraction result to exactly one output
// file. The header is shared: each rendered file repeats it, imports and
// all, so outputs usually want a goimports pass before they compile.
type Plan struct {
	SourcePath string
	Strategy   Strategy
	Header     types.Header
	Files      []*PlannedFile
}

// TotalBlocks returns the number of blocks across all planned files
func (p *Plan) TotalBlocks() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Blocks)
	}
	return n
}

// Render produces the text of one planned file: the header (trailing blank
// lines trimmed), one blank line, then the blocks joined by blank lines,
// with a trailing newline.
func (p *Plan) Render(pf *PlannedFile) string {
	var b strings.Builder

	header := trimTrailingBlanks(p.Header.Lines)
	if len(header) > 0 {
		b.WriteString(strings.Join(header, "\n"))
		b.WriteString("\n")
	}

	for _, block := range pf.Blocks {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.Content())
		b.WriteString("\n")
	}

	return b.String()
}

// Splitter turns extraction results into split plans
type Splitter struct {
	strategy Strategy
}

// New creates a Splitter using StrategyReceiver
func New() *Splitter {
	return &Splitter{strategy: StrategyReceiver}
}

// NewWithStrategy creates a Splitter with an explicit strategy
func NewWithStrategy(strategy Strategy) (*Splitter, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{strategy: strategy}, nil
}

// Plan assigns every block of the result to one planned output file. Block
// order within each file follows input order; file order follows first
// appearance of each group.
func (s *Splitter) Plan(result *types.ExtractResult) (*Plan, error) {
	if err := s.strategy.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{
		SourcePath: result.FilePath,
		Strategy:   s.strategy,
		Header:     result.Header,
	}

	suffix := ".go"
	if strings.HasSuffix(filepath.Base(result.FilePath), "_test.go") {
		suffix = "_test.go"
	}

	g := newGrouper(suffix)
	switch s.strategy {
	case StrategyDecl:
		s.planPerDecl(g, result)
	case StrategyKind:
		s.planPerKind(g, result)
	case StrategyReceiver:
		s.planPerReceiver(g, result)
	}

	plan.Files = g.files
	return plan, nil
}

// planPerDecl gives every block its own file
func (s *Splitter) planPerDecl(g *grouper, result *types.ExtractResult) {
	for _, block := range result.Blocks {
		stem := snakeCase(block.Name)
		if block.Kind == types.KindMethod {
			stem = snakeCase(block.Receiver) + "_" + snakeCase(block.Name)
		}
		g.addToNewFile(stem, block)
	}
}

// planPerKind routes blocks into three fixed buckets
func (s *Splitter) planPerKind(g *grouper, result *types.ExtractResult) {
	for _, block := range result.Blocks {
		switch block.Kind {
		case types.KindMethod:
			g.add("methods", block)
		case types.KindFunction:
			g.add("funcs", block)
		default:
			g.add("types", block)
		}
	}
}

// planPerReceiver keeps each type together with its methods and the
// constructors named after it.
func (s *Splitter) planPerReceiver(g *grouper, result *types.ExtractResult) {
	// Types declared in this file claim their constructors.
	typeNames := make(map[string]bool)
	for _, block := range result.Blocks {
		switch block.Kind {
		case types.KindStruct, types.KindInterface, types.KindAlias, types.KindType:
			typeNames[block.Name] = true
		}
	}

	for _, block := range result.Blocks {
		switch {
		case block.Kind == types.KindMethod:
			g.add(snakeCase(block.Receiver), block)
		case block.Kind == types.KindFunction:
			if target := extractor.ConstructedType(block); target != "" && typeNames[target] {
				g.add(snakeCase(target), block)
				continue
			}
			g.add("funcs", block)
		default:
			g.add(snakeCase(block.Name), block)
		}
	}
}

// grouper accumulates planned files keyed by group stem, preserving first
// appearance order and keeping generated names unique.
type grouper struct {
	suffix  string
	files   []*PlannedFile
	byStem  map[string]*PlannedFile
	claimed map[string]bool
}

func newGrouper(suffix string) *grouper {
	return &grouper{
		suffix:  suffix,
		byStem:  make(map[string]*PlannedFile),
		claimed: make(map[string]bool),
	}
}

// add appends the block to the file for stem, creating it on first use
func (g *grouper) add(stem string, block *types.Block) {
	if pf, ok := g.byStem[stem]; ok {
		pf.Blocks = append(pf.Blocks, block)
		return
	}
	pf := &PlannedFile{Name: g.uniqueName(stem)}
	pf.Blocks = append(pf.Blocks, block)
	g.byStem[stem] = pf
	g.files = append(g.files, pf)
}

// addToNewFile always creates a fresh file, suffixing duplicates
func (g *grouper) addToNewFile(stem string, block *types.Block) {
	pf := &PlannedFile{Name: g.uniqueName(stem)}
	pf.Blocks = append(pf.Blocks, block)
	g.files = append(g.files, pf)
}

// uniqueName turns a stem into an unclaimed file name
func (g *grouper) uniqueName(stem string) string {
	if stem == "" {
		stem = "block"
	}
	name := stem + g.suffix
	for n := 2; g.claimed[name]; n++ {
		name = fmt.Sprintf("%s_%d%s", stem, n, g.suffix)
	}
	g.claimed[name] = true
	return name
}

// snakeCase converts an identifier to lower_snake_case for file names.
// Acronym runs stay together: HTTPServer becomes http_server.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				runEnd := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || runEnd {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// trimTrailingBlanks drops blank lines from the end of the header for
// rendering; the extraction result itself stays untouched.
func trimTrailingBlanks(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
