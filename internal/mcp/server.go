package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/internal/indexer"
	"github.com/dshills/goblocks/internal/searcher"
	"github.com/dshills/goblocks/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "goblocks"
	// DefaultDBFile is the database filename used under the default directory
	DefaultDBFile = "goblocks.db"
)

// ServerVersion resolves the version reported during the MCP handshake
func ServerVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage
	extractor *extractor.Extractor
	indexer   *indexer.Indexer
	searcher  *searcher.Searcher
}

// NewServer creates a new MCP server instance. dbPath is the SQLite
// database file; empty selects ~/.goblocks/goblocks.db.
func NewServer(dbPath string) (*Server, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".goblocks", DefaultDBFile)
	}

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewServerWithStorage(store)
}

// NewServerWithStorage creates an MCP server on top of existing storage.
// The server takes ownership of the store and closes it on shutdown.
func NewServerWithStorage(store storage.Storage) (*Server, error) {
	return NewServerWithSearcher(store, searcher.NewSearcher(store))
}

// NewServerWithSearcher creates an MCP server with a pre-configured
// searcher, used when query cache settings come from a config file.
func NewServerWithSearcher(store storage.Storage, search *searcher.Searcher) (*Server, error) {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:       mcpServer,
		storage:   store,
		extractor: extractor.New(),
		indexer:   indexer.New(store),
		searcher:  search,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until the context is
// cancelled or stdin closes. stdout carries the protocol stream, so
// nothing else may write to it while serving.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the MCP protocol over explicit streams. The storage is
// closed when the session ends, so a Server serves at most once.
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	defer func() { _ = s.storage.Close() }()
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(extractFileTool(), s.handleExtractFile)
	s.mcp.AddTool(splitFileTool(), s.handleSplitFile)
	s.mcp.AddTool(indexPathTool(), s.handleIndexPath)
	s.mcp.AddTool(searchBlocksTool(), s.handleSearchBlocks)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
