package extractor

import (
	"strings"

	"github.com/dshills/goblocks/pkg/types"
)

// detectRoles flags naming-convention roles on a classified block. The
// flags drive split grouping (constructors land with their type, test
// functions with test files) and search filters. They are convention
// guesses carrying the same trust level as the rest of the scan.
func detectRoles(b *types.Block) {
	// Role flags only apply to plain functions; methods and types carry none.
	if b.Kind != types.KindFunction {
		return
	}

	checkConstructor(b)
	checkTestHarness(b)
	checkRuntimeHooks(b)
}

func checkConstructor(b *types.Block) {
	if strings.HasPrefix(b.Name, "New") || strings.HasPrefix(b.Name, "Must") {
		b.IsConstructor = true
	}
}

func checkTestHarness(b *types.Block) {
	switch {
	case strings.HasPrefix(b.Name, "Test"):
		b.IsTest = true
	case strings.HasPrefix(b.Name, "Benchmark"):
		b.IsBenchmark = true
	case strings.HasPrefix(b.Name, "Example"):
		b.IsExample = true
	case strings.HasPrefix(b.Name, "Fuzz"):
		b.IsFuzz = true
	}
}

func checkRuntimeHooks(b *types.Block) {
	switch b.Name {
	case "main":
		b.IsMain = true
	case "init":
		b.IsInit = true
	}
}

// ConstructedType returns the type name a constructor conventionally
// builds: NewServer -> Server, MustCompile -> Compile. Empty when the
// block is not a constructor or nothing follows the prefix.
func ConstructedType(b *types.Block) string {
	if !b.IsConstructor {
		return ""
	}
	name := strings.TrimPrefix(b.Name, "New")
	name = strings.TrimPrefix(name, "Must")
	if name == b.Name {
		return ""
	}
	return name
}
