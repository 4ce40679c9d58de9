package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/pkg/types"
)

const sampleSource = `package store

import (
	"errors"
	"sync"
)

// Store keeps values by key.
type Store struct {
	mu sync.Mutex
	m  map[string]string
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{m: make(map[string]string)}
}

func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", errors.New("missing")
	}
	return v, nil
}

func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

// Keys lists every key of any store-like map.
func Keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type Option = func(*Store)
`

func extract(t *testing.T, src string) *types.ExtractResult {
	t.Helper()
	result := extractor.New().ExtractSource(src)
	require.NotEmpty(t, result.Blocks)
	return result
}

func TestStrategy_Validate(t *testing.T) {
	assert.NoError(t, StrategyDecl.Validate())
	assert.NoError(t, StrategyKind.Validate())
	assert.NoError(t, StrategyReceiver.Validate())

	err := Strategy("topical").Validate()
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestPlan_PerReceiver(t *testing.T) {
	result := extract(t, sampleSource)

	plan, err := New().Plan(result)
	require.NoError(t, err)

	byName := make(map[string][]string)
	for _, pf := range plan.Files {
		for _, b := range pf.Blocks {
			byName[pf.Name] = append(byName[pf.Name], b.Name)
		}
	}

	// Store keeps its methods and its constructor.
	assert.ElementsMatch(t, []string{"Store", "NewStore", "Get", "Put"}, byName["store.go"])
	assert.Equal(t, []string{"Keys"}, byName["funcs.go"])
	assert.Equal(t, []string{"Option"}, byName["option.go"])

	assert.Equal(t, len(result.Blocks), plan.TotalBlocks())
}

func TestPlan_PerKind(t *testing.T) {
	result := extract(t, sampleSource)

	sp, err := NewWithStrategy(StrategyKind)
	require.NoError(t, err)
	plan, err := sp.Plan(result)
	require.NoError(t, err)

	names := make(map[string]int)
	for _, pf := range plan.Files {
		names[pf.Name] = len(pf.Blocks)
	}

	assert.Equal(t, 2, names["types.go"])   // Store, Option
	assert.Equal(t, 2, names["funcs.go"])   // NewStore, Keys
	assert.Equal(t, 2, names["methods.go"]) // Get, Put
	assert.Equal(t, len(result.Blocks), plan.TotalBlocks())
}

func TestPlan_PerDecl(t *testing.T) {
	result := extract(t, sampleSource)

	sp, err := NewWithStrategy(StrategyDecl)
	require.NoError(t, err)
	plan, err := sp.Plan(result)
	require.NoError(t, err)

	require.Len(t, plan.Files, len(result.Blocks))

	var names []string
	for _, pf := range plan.Files {
		require.Len(t, pf.Blocks, 1)
		names = append(names, pf.Name)
	}
	assert.Equal(t, []string{
		"store.go",
		"new_store.go",
		"store_get.go",
		"store_put.go",
		"keys.go",
		"option.go",
	}, names)
}

func TestPlan_DeclNameCollisions(t *testing.T) {
	src := `func Parse() {}
type parse struct {
	raw string
}
`
	result := extract(t, src)

	sp, err := NewWithStrategy(StrategyDecl)
	require.NoError(t, err)
	plan, err := sp.Plan(result)
	require.NoError(t, err)

	require.Len(t, plan.Files, 2)
	assert.Equal(t, "parse.go", plan.Files[0].Name)
	assert.Equal(t, "parse_2.go", plan.Files[1].Name)
}

func TestPlan_TestFileKeepsTestSuffix(t *testing.T) {
	result := extractor.New().ExtractSource(`package store

func TestStore(t *testing.T) {
	t.Skip()
}
`)
	result.FilePath = "/src/store_test.go"

	plan, err := New().Plan(result)
	require.NoError(t, err)

	require.Len(t, plan.Files, 1)
	assert.Equal(t, "funcs_test.go", plan.Files[0].Name)
}

func TestPlan_ConstructorWithoutLocalType(t *testing.T) {
	// NewClient constructs a type not declared in this file, so it stays
	// with the free functions.
	src := `func NewClient() *Client {
	return &Client{}
}
`
	result := extract(t, src)

	plan, err := New().Plan(result)
	require.NoError(t, err)

	require.Len(t, plan.Files, 1)
	assert.Equal(t, "funcs.go", plan.Files[0].Name)
}

func TestRender(t *testing.T) {
	result := extract(t, sampleSource)

	sp, err := NewWithStrategy(StrategyKind)
	require.NoError(t, err)
	plan, err := sp.Plan(result)
	require.NoError(t, err)

	var typesFile *PlannedFile
	for _, pf := range plan.Files {
		if pf.Name == "types.go" {
			typesFile = pf
		}
	}
	require.NotNil(t, typesFile)

	content := plan.Render(typesFile)

	assert.True(t, strings.HasPrefix(content, "package store\n"))
	assert.Contains(t, content, "\t\"errors\"")
	assert.Contains(t, content, "// Store keeps values by key.\ntype Store struct {")
	assert.Contains(t, content, "type Option = func(*Store)")
	assert.True(t, strings.HasSuffix(content, "\n"))

	// One blank line separates the header from the first block.
	assert.Contains(t, content, ")\n\n// Store keeps values by key.")
}

func TestRender_NoHeader(t *testing.T) {
	result := extract(t, "func A() {}\n")

	plan, err := New().Plan(result)
	require.NoError(t, err)
	require.Len(t, plan.Files, 1)

	content := plan.Render(plan.Files[0])
	assert.Equal(t, "func A() {}\n", content)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Store":      "store",
		"NewStore":   "new_store",
		"HTTPServer": "http_server",
		"parseURL":   "parse_url",
		"ID":         "id",
		"Pair":       "pair",
		"a1B2":       "a1_b2",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), "snakeCase(%q)", in)
	}
}
