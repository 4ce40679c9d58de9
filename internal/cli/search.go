package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/searcher"
	"github.com/dshills/goblocks/internal/storage"
	"github.com/dshills/goblocks/pkg/types"
)

var (
	searchLimit    int
	searchMode     string
	searchKinds    []string
	searchExported bool
	searchJSON     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <path> <query>",
	Short: "Search indexed blocks by name and content",
	Long: `Search queries a previously indexed project. The default hybrid mode
runs declaration-name matching and BM25 full-text search concurrently
and merges the legs with Reciprocal Rank Fusion.

The project must be indexed first (see "goblocks index").

Examples:
  # Find a declaration by name
  goblocks search . NewServer

  # Phrase search over bodies and doc comments
  goblocks search ~/src/myproject "flush pending comments" --mode text

  # Only exported methods
  goblocks search . Handle --kind method --exported`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results (1-100)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: hybrid, name, or text")
	searchCmd.Flags().StringSliceVar(&searchKinds, "kind", nil, "filter by block kind (function, method, struct, interface, alias, type)")
	searchCmd.Flags().BoolVar(&searchExported, "exported", false, "only exported declarations")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rootPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	query := args[1]

	limit := cfg.Search.Limit
	if cmd.Flags().Changed("limit") {
		limit = searchLimit
	}

	mode := searcher.SearchMode(searchMode)
	switch mode {
	case searcher.SearchModeHybrid, searcher.SearchModeName, searcher.SearchModeText:
	default:
		return fmt.Errorf("unknown search mode %q (use hybrid, name, or text)", searchMode)
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	project, err := store.GetProject(ctx, rootPath)
	if err == storage.ErrNotFound {
		return fmt.Errorf("project %s is not indexed: run \"goblocks index %s\" first", rootPath, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	var filters *storage.SearchFilters
	if len(searchKinds) > 0 || searchExported {
		filters = &storage.SearchFilters{
			Kinds:        searchKinds,
			ExportedOnly: searchExported,
		}
	}

	s := searcher.NewSearcher(store)
	resp, err := s.Search(ctx, searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		Mode:      mode,
		Filters:   filters,
		ProjectID: project.ID,
		// The query cache is per-process; a one-shot run gains nothing from it.
		UseCache: false,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printSearchJSON(query, resp)
	}
	printSearchResults(query, resp)
	return nil
}

func printSearchResults(query string, resp *searcher.SearchResponse) {
	if resp.TotalResults == 0 {
		fmt.Printf("No results for %q\n", query)
		return
	}

	fmt.Printf("%d results for %q (%s mode, %s)\n\n",
		resp.TotalResults, query, resp.SearchMode, resp.Duration.Round(time.Millisecond))

	for _, r := range resp.Results {
		fmt.Printf("%3d. %-30s %-9s %s:%d-%d\n",
			r.Rank, displayName(r), r.Kind, r.File.Path, r.File.StartLine, r.File.EndLine)
		if r.DocComment != "" {
			fmt.Printf("     %s\n", firstLine(r.DocComment))
		}
	}
}

// displayName prefixes methods with their receiver the way godoc does.
func displayName(r types.SearchResult) string {
	if r.Receiver != "" {
		return fmt.Sprintf("(%s).%s", r.Receiver, r.Name)
	}
	return r.Name
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func printSearchJSON(query string, resp *searcher.SearchResponse) error {
	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"rank":        r.Rank,
			"score":       r.RelevanceScore,
			"name":        r.Name,
			"kind":        r.Kind,
			"receiver":    r.Receiver,
			"exported":    r.Exported,
			"file":        r.File.Path,
			"package":     r.File.Package,
			"start_line":  r.File.StartLine,
			"end_line":    r.File.EndLine,
			"doc_comment": r.DocComment,
			"content":     r.Content,
		})
	}

	payload := map[string]interface{}{
		"query":         query,
		"mode":          resp.SearchMode,
		"total_results": resp.TotalResults,
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       results,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
