// Package storage provides SQLite-based persistence for extracted blocks.
//
// The storage layer manages:
//   - Project metadata
//   - File information and content hashes
//   - Extracted declaration blocks
//   - Full-text search indexes
//
// # Database Schema
//
// Tables:
//   - projects: Project metadata (root path, module name, totals)
//   - files: File paths, SHA-256 hashes, and per-file line accounting
//   - blocks: Extracted blocks with kind, receiver, and role flags
//   - blocks_fts: FTS5 full-text search index over name, doc comment, and content
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.goblocks/indices/project.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	// Track a file
//	file := &storage.File{
//	    ProjectID:   projectID,
//	    FilePath:    "internal/server/server.go",
//	    PackageName: "server",
//	    ContentHash: hash,
//	}
//	err = db.UpsertFile(ctx, file)
//
//	// Replace its blocks after extraction
//	blocks := make([]*storage.Block, 0, len(result.Blocks))
//	for _, b := range result.Blocks {
//	    blocks = append(blocks, storage.FromTypesBlock(b, file.ID))
//	}
//	err = db.ReplaceFileBlocks(ctx, file.ID, blocks)
//
// # Transactions
//
// Use transactions for atomic operations:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	err = tx.UpsertFile(ctx, file)
//	err = tx.ReplaceFileBlocks(ctx, file.ID, blocks)
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Incremental Updates
//
// Check file hashes to detect changes:
//
//	stored, err := db.GetFile(ctx, projectID, filePath)
//	if err == nil && stored.ContentHash == currentHash {
//	    // File unchanged, skip re-indexing
//	    return nil
//	}
//
// # Name Search
//
// Declaration-name search ranks exact matches above prefix matches above
// substring matches:
//
//	results, err := db.SearchBlocksByName(ctx, projectID, "NewServer", 10, nil)
//	for _, r := range results {
//	    fmt.Printf("Block %d: score %.2f\n", r.BlockID, r.NameScore)
//	}
//
// # Full-Text Search
//
// Query block content using BM25 ranking:
//
//	results, err := db.SearchBlocksText(ctx, projectID, "connection retry", 10, nil)
//	for _, r := range results {
//	    fmt.Printf("Block %d: score %.3f\n", r.BlockID, r.BM25Score)
//	}
//
// FTS5 indexes are kept in sync by triggers when blocks are inserted,
// updated, or deleted.
//
// Both search operations accept SearchFilters to narrow by block kind,
// role flags, package, receiver, file glob, or exported-only.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// Pure Go Build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - FTS5 included, no C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO Build (cgo_sqlite tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Faster, requires a C compiler and the fts5 tag
//
//     CGO_ENABLED=1 go build -tags "cgo_sqlite,fts5" ./...
package storage
