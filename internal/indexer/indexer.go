package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/internal/storage"
)

// maxDefaultWorkers caps the worker count chosen when none is configured.
// Block extraction is cheap; past this point the single SQLite connection
// is the bottleneck, not CPU.
const maxDefaultWorkers = 8

// Indexer coordinates the indexing pipeline: discover -> extract -> store
type Indexer struct {
	extractor *extractor.Extractor
	storage   storage.Storage

	// Worker pool configuration
	workers int
}

// Config contains configuration for the indexer
type Config struct {
	Workers       int      // Number of concurrent workers (default: NumCPU, capped at 8)
	IncludeTests  bool     // Whether to index _test.go files (default: true)
	IncludeVendor bool     // Whether to index the vendor directory (default: false)
	ForceReindex  bool     // Re-extract files even when the content hash is unchanged
	Includes      []string // Glob patterns selecting files to index (default: **/*.go)
	Excludes      []string // Glob patterns for files to skip

	// OnProgress, when set, is invoked after each processed file. It is
	// called from worker goroutines and must be safe for concurrent use.
	OnProgress func(Progress)
}

// Progress reports how far an indexing run has advanced.
type Progress struct {
	TotalFiles     int
	ProcessedFiles int
	CurrentFile    string
}

// Statistics contains statistics about one indexing run
type Statistics struct {
	FilesScanned  int
	FilesIndexed  int
	FilesSkipped  int
	FilesFailed   int
	FilesRemoved  int
	BlocksStored  int
	LinesDropped  int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return NewWithExtractor(store, extractor.New())
}

// NewWithExtractor creates an Indexer that extracts with ext instead of
// the default extractor options.
func NewWithExtractor(store storage.Storage, ext *extractor.Extractor) *Indexer {
	return &Indexer{
		extractor: ext,
		storage:   store,
		workers:   defaultWorkers(),
	}
}

func defaultWorkers() int {
	w := runtime.NumCPU()
	if w > maxDefaultWorkers {
		w = maxDefaultWorkers
	}
	return w
}

// IndexProject indexes an entire Go project rooted at rootPath.
//
// Runs against the same root are serialized: a second call while one is
// underway fails fast with ErrIndexingInProgress. Unchanged files (by
// content hash) are skipped unless Config.ForceReindex is set, and files
// that vanished from disk since the last run are removed from the index.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{
			IncludeTests: true,
		}
	}

	if config.Workers > 0 {
		idx.workers = config.Workers
	} else {
		idx.workers = defaultWorkers()
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	lock := locks.forRoot(absRoot)
	if !lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer lock.Release()

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	// Get or create project
	project, err := idx.getOrCreateProject(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	// Discover Go files
	files, err := idx.discoverFiles(absRoot, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesScanned = len(files)

	// Index files concurrently
	if err := idx.indexFiles(ctx, project, files, config, stats); err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	// Remove index entries for files that no longer exist on disk
	if err := idx.pruneMissing(ctx, project, files, stats); err != nil {
		return nil, fmt.Errorf("failed to prune deleted files: %w", err)
	}

	// Update project statistics
	if err := idx.updateProjectStats(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}

	if err != storage.ErrNotFound {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}

	// Try to extract module info from go.mod
	goModPath := filepath.Join(rootPath, "go.mod")
	if modInfo, err := parseGoMod(goModPath); err == nil {
		project.ModuleName = modInfo.Module
		project.GoVersion = modInfo.GoVersion
	}

	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// discoverFiles finds the Go files to index under rootPath
func (idx *Indexer) discoverFiles(rootPath string, config *Config) ([]string, error) {
	includes := config.Includes
	if len(includes) == 0 {
		includes = []string{defaultIncludePattern}
	}

	excludes := append([]string{}, config.Excludes...)
	if !config.IncludeVendor {
		excludes = append(excludes, "vendor/**")
	}

	fd, err := NewFileDiscovery(rootPath, includes, excludes, config.IncludeTests)
	if err != nil {
		return nil, err
	}

	return fd.Discover()
}

// indexFiles extracts and stores a set of files using a bounded worker pool
func (idx *Indexer) indexFiles(ctx context.Context, project *storage.Project, files []string, config *Config, stats *Statistics) error {
	semaphore := make(chan struct{}, idx.workers)

	// Track progress with atomic counters
	var (
		indexed   int32
		skipped   int32
		failed    int32
		blocks    int32
		dropped   int32
		processed int32
	)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for _, filePath := range files {
		// Stop launching new work once the context is cancelled; work
		// already launched is drained by Wait below.
		if gctx.Err() != nil {
			break
		}

		select {
		case <-gctx.Done():
			continue
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		g.Go(func() error {
			defer func() { <-semaphore }()

			err := idx.indexFile(gctx, project, filePath, config.ForceReindex, &indexed, &skipped, &blocks, &dropped)
			if err != nil {
				// Per-file failures do not abort the run
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
				mu.Unlock()
			}

			if config.OnProgress != nil {
				config.OnProgress(Progress{
					TotalFiles:     len(files),
					ProcessedFiles: int(atomic.AddInt32(&processed, 1)),
					CurrentFile:    filePath,
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.BlocksStored = int(blocks)
	stats.LinesDropped = int(dropped)

	return nil
}

// indexFile extracts one file and replaces its stored blocks
func (idx *Indexer) indexFile(ctx context.Context, project *storage.Project, filePath string,
	force bool, indexed, skipped, blocks, dropped *int32) error {

	relPath, err := filepath.Rel(project.RootPath, filePath)
	if err != nil {
		return err
	}
	relPath = filepath.ToSlash(relPath)

	hash, modTime, sizeBytes, err := computeFileHash(filePath)
	if err != nil {
		return err
	}

	shouldSkip, err := idx.checkFileChanged(ctx, project.ID, relPath, hash, force, skipped)
	if err != nil {
		return err
	}
	if shouldSkip {
		return nil
	}

	result, err := idx.extractor.ExtractFile(filePath)
	if err != nil {
		return err
	}

	file := &storage.File{
		ProjectID:    project.ID,
		FilePath:     relPath,
		PackageName:  result.PackageName,
		ContentHash:  hash,
		ModTime:      modTime,
		SizeBytes:    sizeBytes,
		LineCount:    result.RetainedLines() + result.DroppedLines,
		BlockCount:   result.BlockCount(),
		DroppedLines: result.DroppedLines,
	}
	if err := idx.storage.UpsertFile(ctx, file); err != nil {
		return err
	}

	rows := make([]*storage.Block, 0, len(result.Blocks))
	for _, b := range result.Blocks {
		rows = append(rows, storage.FromTypesBlock(b, file.ID))
	}
	if err := idx.storage.ReplaceFileBlocks(ctx, file.ID, rows); err != nil {
		return fmt.Errorf("failed to store blocks: %w", err)
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(blocks, int32(len(rows)))
	atomic.AddInt32(dropped, int32(result.DroppedLines))

	return nil
}

// checkFileChanged reports whether a file can be skipped because its
// stored content hash matches the one on disk
func (idx *Indexer) checkFileChanged(ctx context.Context, projectID int64,
	relPath string, hash [32]byte, force bool, skipped *int32) (bool, error) {

	if force {
		return false, nil
	}

	existingFile, err := idx.storage.GetFile(ctx, projectID, relPath)
	if err == storage.ErrNotFound {
		// New file, needs indexing
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if existingFile.ContentHash == hash {
		atomic.AddInt32(skipped, 1)
		return true, nil
	}

	return false, nil
}

// pruneMissing deletes index entries for files absent from the walk.
// DeleteFile cascades to the file's blocks.
func (idx *Indexer) pruneMissing(ctx context.Context, project *storage.Project, walked []string, stats *Statistics) error {
	seen := make(map[string]bool, len(walked))
	for _, filePath := range walked {
		relPath, err := filepath.Rel(project.RootPath, filePath)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(relPath)] = true
	}

	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	removed := 0
	for _, file := range files {
		if seen[file.FilePath] {
			continue
		}
		if err := idx.storage.DeleteFile(ctx, file.ID); err != nil {
			return fmt.Errorf("failed to remove %s: %w", file.FilePath, err)
		}
		removed++
	}
	stats.FilesRemoved = removed

	return nil
}

// updateProjectStats updates the project's file and block totals
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project) error {
	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	totalBlocks := 0
	for _, file := range files {
		totalBlocks += file.BlockCount
	}

	project.TotalFiles = len(files)
	project.TotalBlocks = totalBlocks
	project.LastIndexedAt = time.Now()

	return idx.storage.UpdateProject(ctx, project)
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, time.Time, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))

	return result, info.ModTime(), info.Size(), nil
}

// goModInfo contains parsed go.mod information
type goModInfo struct {
	Module    string
	GoVersion string
}

// parseGoMod extracts basic info from go.mod file
func parseGoMod(goModPath string) (*goModInfo, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, err
	}

	info := &goModInfo{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			info.Module = strings.TrimSpace(strings.TrimPrefix(line, "module"))
		} else if strings.HasPrefix(line, "go ") {
			info.GoVersion = strings.TrimSpace(strings.TrimPrefix(line, "go"))
		}
	}

	return info, nil
}
