// Package indexer coordinates the end-to-end indexing pipeline for Go
// codebases: discover files, extract declaration blocks, persist them.
//
// # Basic Usage
//
//	idx := indexer.New(store)
//
//	stats, err := idx.IndexProject(ctx, "/path/to/project", &indexer.Config{
//	    IncludeTests: true,
//	})
//
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Indexing Pipeline
//
// Each run executes the same stages:
//
//  1. Lock: acquire the per-root advisory lock (ErrIndexingInProgress if held)
//  2. Discover: walk the tree, apply include/exclude globs
//  3. Incremental decision: compare content hashes, skip unchanged files
//  4. Extract: split each changed file into header and blocks (parallel)
//  5. Store: upsert the file record and replace its blocks transactionally
//  6. Prune: drop index entries for files no longer on disk
//
// # Incremental Indexing
//
// File change detection uses SHA-256 content hashing, so only changed
// files are re-extracted on subsequent runs:
//
//	stats1, _ := idx.IndexProject(ctx, root, nil)
//	// Files: 247 indexed, 0 skipped
//
//	stats2, _ := idx.IndexProject(ctx, root, nil)
//	// Files: 3 indexed, 244 skipped
//
// Set Config.ForceReindex to re-extract everything regardless of hashes.
//
// # File Discovery
//
// Discovery matches slash-separated paths relative to the root against
// glob patterns ("**/*.go" by default). Hidden, "_"-prefixed, and
// testdata directories are never walked; vendor is excluded unless
// Config.IncludeVendor is set:
//
//	config := &indexer.Config{
//	    Includes: []string{"internal/**/*.go"},
//	    Excludes: []string{"internal/generated/**"},
//	}
//
// # Concurrent Processing
//
// Files are processed by a bounded worker pool (Config.Workers, default
// NumCPU capped at 8). Extraction and hashing run in parallel; storage
// writes serialize on the single SQLite connection. Per-file failures
// are collected in Statistics.ErrorMessages and do not abort the run.
//
// # Watch Mode
//
//	w, err := idx.Watch(ctx, root, config, func(stats *indexer.Statistics, err error) {
//	    if err != nil {
//	        log.Printf("re-index failed: %v", err)
//	    }
//	})
//	defer w.Stop()
//
// The watcher debounces filesystem events for 500 ms and then runs an
// incremental IndexProject, which also removes deleted files from the
// index.
package indexer
