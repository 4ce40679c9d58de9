// Package searcher implements hybrid code search combining declaration-name
// matching with BM25 full-text search.
//
// The searcher provides three search modes:
//   - Hybrid: Combines name + BM25 full-text search (recommended)
//   - Name: Declaration-name matching only
//   - Text: BM25 full-text search only
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    ProjectID: project.ID,
//	    Query:     "ParseConfig",
//	    Limit:     10,
//	    Mode:      searcher.SearchModeHybrid,
//	})
//
//	for _, result := range resp.Results {
//	    fmt.Printf("[%d] %s (score: %.4f)\n",
//	        result.Rank, result.Name, result.RelevanceScore)
//	}
//
// # Search Modes
//
// Hybrid Mode (default, recommended):
//
//   - Runs name and full-text search concurrently
//
//   - Uses Reciprocal Rank Fusion (RRF) to merge results
//
//   - Best for most queries (exact names + body/comment text)
//
//     resp, _ := s.Search(ctx, searcher.SearchRequest{
//     Query: "flush pending comments",
//     Mode:  searcher.SearchModeHybrid,
//     })
//
// Name Mode:
//
//   - Matches declaration names only
//
//   - Exact matches score 1.0, prefix matches 0.75, substring matches 0.5
//
//   - Best when you know the identifier ("NewServer")
//
//     resp, _ := s.Search(ctx, searcher.SearchRequest{
//     Query: "NewServer",
//     Mode:  searcher.SearchModeName,
//     })
//
// Text Mode:
//
//   - BM25 full-text search over name, doc comment, and block content
//
//   - Best for phrases that appear in bodies or comments
//
//     resp, _ := s.Search(ctx, searcher.SearchRequest{
//     Query: "context cancelled",
//     Mode:  searcher.SearchModeText,
//     })
//
// # Reciprocal Rank Fusion (RRF)
//
// Hybrid mode uses RRF to combine name and text results:
//
//	For each result r in name_results:
//	    rrf_score[r.block_id] += 1 / (k + r.rank)
//
//	For each result r in text_results:
//	    rrf_score[r.block_id] += 1 / (k + r.rank)
//
//	Sort by rrf_score descending
//
// Where k = 60 (standard RRF constant). Blocks appearing in both result
// lists accumulate score from each and rank above single-list blocks at
// similar positions. Score ties break toward name matches.
//
// # Filtering
//
// Apply filters to narrow search:
//
//	resp, _ := s.Search(ctx, searcher.SearchRequest{
//	    Query: "validate",
//	    Filters: &storage.SearchFilters{
//	        Kinds:        []string{"function", "method"},
//	        Packages:     []string{"extractor"},
//	        ExportedOnly: true,
//	    },
//	})
//
// Available filters:
//   - Kinds: function, method, struct, interface, alias, type
//   - Roles: test, benchmark, example, fuzz, constructor, main, init
//   - Packages: Package names to include
//   - FilePattern: Glob pattern applied to relative file paths
//   - Receiver: Methods on a specific receiver base type
//   - ExportedOnly: Only exported declarations
//
// Filters apply inside the SQL of both legs, so limits count only
// surviving rows.
//
// # Caching
//
// Responses are cached in a 128-entry LRU keyed by a SHA-256 hash of the
// query, mode, project, and filters:
//
//	req := searcher.SearchRequest{
//	    Query:     "ParseConfig",
//	    ProjectID: project.ID,
//	    UseCache:  true,
//	}
//
//	resp1, _ := s.Search(ctx, req) // executes both legs
//	resp2, _ := s.Search(ctx, req) // served from cache, CacheHit=true
//
// Entries expire after CacheTTL (default 5 minutes). Reindexing a project
// must call InvalidateCache so stale results don't outlive the data:
//
//	stats, err := idx.IndexProject(ctx, root, cfg)
//	if err == nil {
//	    _ = s.InvalidateCache(ctx, project.ID)
//	}
package searcher
