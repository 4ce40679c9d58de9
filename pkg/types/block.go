package types

import (
	"crypto/sha256"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlockKind represents the kind of top-level declaration a block holds
type BlockKind string

const (
	KindFunction  BlockKind = "function"
	KindMethod    BlockKind = "method"
	KindStruct    BlockKind = "struct"
	KindInterface BlockKind = "interface"
	KindAlias     BlockKind = "alias"
	KindType      BlockKind = "type" // named type that is not a struct, interface, or alias
)

// Block represents exactly one top-level declaration extracted from source
// text: the attached comment lines immediately above it (if any), the
// declaration line, and every following line up to where brace nesting
// returns to zero. Lines are verbatim, in input order, without trailing
// newlines. Once produced by the extractor a block is never mutated.
type Block struct {
	// Identification (assigned by storage; zero until persisted)
	ID     int64
	FileID int64

	// Classification, derived from the declaration line only
	Name     string
	Kind     BlockKind
	Receiver string // For methods: receiver base type, '*' stripped
	Exported bool

	// Content
	Comments []string // Attached leading comment lines
	Lines    []string // Declaration line through closing line

	// Location (1-based, inclusive; StartLine counts attached comments)
	StartLine int
	EndLine   int

	// Terminated is false only for a trailing block flushed at end of
	// input while its brace depth was still positive.
	Terminated bool

	// Naming-convention role flags
	IsConstructor bool // Name starts with "New" or "Must"
	IsTest        bool // function named Test*
	IsBenchmark   bool // function named Benchmark*
	IsExample     bool // function named Example*
	IsFuzz        bool // function named Fuzz*
	IsMain        bool // func main
	IsInit        bool // func init
}

// Content returns the verbatim text of the block: attached comments first,
// then the declaration lines, joined by newlines.
func (b *Block) Content() string {
	if len(b.Comments) == 0 {
		return strings.Join(b.Lines, "\n")
	}
	parts := make([]string, 0, len(b.Comments)+len(b.Lines))
	parts = append(parts, b.Comments...)
	parts = append(parts, b.Lines...)
	return strings.Join(parts, "\n")
}

// DeclLine returns the declaration line itself (the first non-comment line).
func (b *Block) DeclLine() string {
	if len(b.Lines) == 0 {
		return ""
	}
	return b.Lines[0]
}

// DocComment returns the attached comment lines joined by newlines, or ""
// when no comments were attributed to this block.
func (b *Block) DocComment() string {
	return strings.Join(b.Comments, "\n")
}

// LineCount returns the total number of lines in the block, attached
// comments included.
func (b *Block) LineCount() int {
	return len(b.Comments) + len(b.Lines)
}

// ContentHash computes the SHA-256 hash of the block content, used for
// change detection and deduplication in storage.
func (b *Block) ContentHash() [32]byte {
	return sha256.Sum256([]byte(b.Content()))
}

// HasRole returns true if any naming-convention role flag is set.
func (b *Block) HasRole() bool {
	return b.IsConstructor || b.IsTest || b.IsBenchmark || b.IsExample ||
		b.IsFuzz || b.IsMain || b.IsInit
}

// ValidateKind checks if the block kind is valid
func (b *Block) ValidateKind() error {
	switch b.Kind {
	case KindFunction, KindMethod, KindStruct, KindInterface, KindAlias, KindType:
		return nil
	default:
		return errors.New("invalid block kind")
	}
}

// Validate performs comprehensive validation of the block
func (b *Block) Validate() error {
	if b.Name == "" {
		return errors.New("block name is required")
	}

	if err := b.ValidateKind(); err != nil {
		return err
	}

	if len(b.Lines) == 0 {
		return errors.New("block must contain at least one declaration line")
	}

	// Methods must have a receiver
	if b.Kind == KindMethod && b.Receiver == "" {
		return errors.New("methods must have a receiver type")
	}

	// Non-methods should not have a receiver
	if b.Kind != KindMethod && b.Receiver != "" {
		return errors.New("only methods can have a receiver type")
	}

	if b.StartLine <= 0 || b.EndLine <= 0 {
		return errors.New("invalid position: line numbers must be positive")
	}

	if b.StartLine > b.EndLine {
		return errors.New("invalid position: start line must be before or equal to end line")
	}

	return nil
}

// IsExportedName reports whether name starts with an upper-case letter.
func IsExportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
