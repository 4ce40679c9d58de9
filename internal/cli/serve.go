package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/mcp"
	"github.com/dshills/goblocks/internal/searcher"
	"github.com/dshills/goblocks/internal/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Serve starts the Model Context Protocol server that lets LLM coding
assistants extract, split, index, and search Go declaration blocks.

The server:
- Communicates via stdio (standard MCP transport)
- Exposes extract_file, split_file, index_path, search_blocks, get_status
- Logs diagnostics to stderr, keeping stdout clean for the protocol

Example:
  goblocks serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, dbPath, err := openStore(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s MCP server %s\n", mcp.ServerName, mcp.ServerVersion())
	fmt.Fprintf(os.Stderr, "Database: %s (%s driver, %s build)\n", dbPath, storage.DriverName, storage.BuildMode)
	fmt.Fprintf(os.Stderr, "\n")

	search := searcher.NewSearcherWithCache(store, cfg.Search.CacheSize, cfg.Search.CacheTTL)
	server, err := mcp.NewServerWithSearcher(store, search)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Serve owns the store from here and closes it on exit. It blocks
	// until stdin closes or a signal cancels the context.
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
