package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/goblocks/pkg/types"
)

func classifyLine(line string) *types.Block {
	b := &types.Block{Lines: []string{line}, StartLine: 1, EndLine: 1, Terminated: true}
	classify(b)
	return b
}

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		line     string
		kind     types.BlockKind
		name     string
		receiver string
	}{
		{"func Parse(s string) error {", types.KindFunction, "Parse", ""},
		{"func (s *Server) Start() error {", types.KindMethod, "Start", "Server"},
		{"func (s Server) Addr() string {", types.KindMethod, "Addr", "Server"},
		{"func (q *Query[T]) Run() {", types.KindMethod, "Run", "Query"},
		{"type User struct {", types.KindStruct, "User", ""},
		{"type Shape interface {", types.KindInterface, "Shape", ""},
		{"type ID = int", types.KindAlias, "ID", ""},
		{"type Numbers []int", types.KindType, "Numbers", ""},
		{"type Handler func(w io.Writer) error", types.KindType, "Handler", ""},
		{"type Pair[K, V any] struct {", types.KindStruct, "Pair", ""},
		{"type Set[T comparable] interface {", types.KindInterface, "Set", ""},
		{"func Map[T, R any](xs []T, f func(T) R) []R {", types.KindFunction, "Map", ""},
	}

	for _, tt := range tests {
		b := classifyLine(tt.line)
		assert.Equal(t, tt.kind, b.Kind, "kind for %q", tt.line)
		assert.Equal(t, tt.name, b.Name, "name for %q", tt.line)
		assert.Equal(t, tt.receiver, b.Receiver, "receiver for %q", tt.line)
	}
}

func TestClassify_Exported(t *testing.T) {
	assert.True(t, classifyLine("func Public() {}").Exported)
	assert.False(t, classifyLine("func private() {}").Exported)
	assert.True(t, classifyLine("type Public struct {").Exported)
	assert.False(t, classifyLine("type private struct {").Exported)
}

func TestClassify_Roles(t *testing.T) {
	assert.True(t, classifyLine("func NewServer(addr string) *Server {").IsConstructor)
	assert.True(t, classifyLine("func MustCompile(expr string) *Regexp {").IsConstructor)
	assert.True(t, classifyLine("func TestServer_Start(t *testing.T) {").IsTest)
	assert.True(t, classifyLine("func BenchmarkParse(b *testing.B) {").IsBenchmark)
	assert.True(t, classifyLine("func ExampleNew() {").IsExample)
	assert.True(t, classifyLine("func FuzzDecode(f *testing.F) {").IsFuzz)
	assert.True(t, classifyLine("func main() {").IsMain)
	assert.True(t, classifyLine("func init() {").IsInit)

	plain := classifyLine("func Helper() {}")
	assert.False(t, plain.HasRole())

	// Methods never carry role flags, whatever their names suggest.
	method := classifyLine("func (f *Factory) NewWidget() *Widget {")
	assert.False(t, method.IsConstructor)
}

func TestClassify_FallbackOnUnmatchedLine(t *testing.T) {
	b := classifyLine("func 日本語() {}")
	assert.Equal(t, types.KindFunction, b.Kind)
	assert.NotEmpty(t, b.Name)

	b = classifyLine("type 日本語 struct {")
	assert.Equal(t, types.KindType, b.Kind)
	assert.NotEmpty(t, b.Name)
}

func TestReceiverType(t *testing.T) {
	assert.Equal(t, "Server", receiverType("s *Server"))
	assert.Equal(t, "Server", receiverType("*Server"))
	assert.Equal(t, "Server", receiverType("Server"))
	assert.Equal(t, "List", receiverType("l *List[T]"))
	assert.Equal(t, "", receiverType("  "))
}

func TestConstructedType(t *testing.T) {
	b := classifyLine("func NewServer() *Server {")
	assert.Equal(t, "Server", ConstructedType(b))

	b = classifyLine("func MustParse(s string) *URL {")
	assert.Equal(t, "Parse", ConstructedType(b))

	b = classifyLine("func New() *Client {")
	assert.Equal(t, "", ConstructedType(b))

	b = classifyLine("func Helper() {}")
	assert.Equal(t, "", ConstructedType(b))
}
