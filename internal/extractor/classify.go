package extractor

import (
	"regexp"
	"strings"

	"github.com/dshills/goblocks/pkg/types"
)

// declPattern matches the opening of a top-level declaration: the keyword,
// an optional parenthesized receiver clause, and the declared name token.
// The name class accepts the brackets of a generic parameter list; the
// generic part is stripped afterwards.
var declPattern = regexp.MustCompile(`^(func|type)\s+(?:\(([^)]*)\)\s*)?([A-Za-z0-9_\[\]\*,]+)`)

// classify fills a block's kind, name, receiver, exported flag, and role
// flags from its declaration line. It never inspects the body: the
// classification is as heuristic as the scan that produced the block.
func classify(b *types.Block) {
	line := b.DeclLine()

	m := declPattern.FindStringSubmatch(line)
	if m == nil {
		classifyFallback(b, line)
		detectRoles(b)
		return
	}

	keyword, receiver, name := m[1], m[2], m[3]
	b.Name = cleanName(name)

	switch keyword {
	case "func":
		if strings.TrimSpace(receiver) != "" {
			b.Kind = types.KindMethod
			b.Receiver = receiverType(receiver)
		} else {
			b.Kind = types.KindFunction
		}
	case "type":
		b.Kind = typeKind(name, line[len(m[0]):])
	}

	b.Exported = types.IsExportedName(b.Name)
	detectRoles(b)
}

// classifyFallback handles declaration lines the pattern cannot pick a
// name from (non-ASCII identifiers, malformed clauses). Kind comes from
// the keyword alone; the name is the raw second token.
func classifyFallback(b *types.Block, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		b.Kind = types.KindFunction
		b.Name = "_"
		return
	}

	switch fields[0] {
	case "type":
		b.Kind = types.KindType
	default:
		b.Kind = types.KindFunction
	}

	if len(fields) > 1 {
		b.Name = cleanName(fields[1])
	}
	if b.Name == "" {
		b.Name = "_"
	}
	b.Exported = types.IsExportedName(b.Name)
}

// typeKind decides the kind of a type declaration from the text following
// the name token. When the token holds an unclosed generic parameter list
// (`type Pair[K, ...`) the remainder of the brackets is skipped first so
// the body keyword after them decides.
func typeKind(name, rest string) types.BlockKind {
	if strings.Contains(name, "[") && !strings.Contains(name, "]") {
		if i := strings.IndexByte(rest, ']'); i >= 0 {
			rest = rest[i+1:]
		}
	}
	rest = strings.TrimSpace(rest)
	switch {
	case strings.HasPrefix(rest, "="):
		return types.KindAlias
	case strings.HasPrefix(rest, "struct"):
		return types.KindStruct
	case strings.HasPrefix(rest, "interface"):
		return types.KindInterface
	default:
		return types.KindType
	}
}

// receiverType extracts the base type name from a receiver clause: the
// last whitespace-separated token with pointer stars and generic
// parameters stripped.
func receiverType(clause string) string {
	fields := strings.Fields(clause)
	if len(fields) == 0 {
		return ""
	}
	t := strings.TrimLeft(fields[len(fields)-1], "*")
	if i := strings.IndexByte(t, '['); i >= 0 {
		t = t[:i]
	}
	return t
}

// cleanName strips a generic parameter list or stray punctuation from the
// matched name token.
func cleanName(name string) string {
	if i := strings.IndexAny(name, "[(,*"); i >= 0 {
		name = name[:i]
	}
	return name
}
