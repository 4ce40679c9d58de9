package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/indexer"
)

var (
	indexForce         bool
	indexIncludeTests  bool
	indexIncludeVendor bool
	indexWatch         bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a Go project for block search",
	Long: `Index walks a project tree, extracts the declaration blocks of every Go
file, and stores them in the SQLite index with full-text search.

Indexing is incremental: files whose content hash is unchanged since the
last run are skipped. Use --force to rebuild everything, or --watch to
keep reindexing as files change.

Examples:
  # Index the current directory
  goblocks index

  # Full rebuild of a specific project
  goblocks index ~/src/myproject --force

  # Keep the index fresh while editing
  goblocks index --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-index all files ignoring content hashes")
	indexCmd.Flags().BoolVar(&indexIncludeTests, "include-tests", true, "index *_test.go files")
	indexCmd.Flags().BoolVar(&indexIncludeVendor, "include-vendor", false, "index vendor directories")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "watch for file changes and reindex incrementally")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rootPath := "."
	if len(args) == 1 {
		rootPath = args[0]
	}
	rootPath, err = filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	idx := indexer.New(store)

	idxConfig := &indexer.Config{
		Workers:       cfg.Index.Workers,
		IncludeTests:  cfg.Index.IncludeTests,
		IncludeVendor: cfg.Index.IncludeVendor,
		ForceReindex:  indexForce,
		Excludes:      cfg.Index.Exclude,
	}
	// Flags override config only when set explicitly.
	if cmd.Flags().Changed("include-tests") {
		idxConfig.IncludeTests = indexIncludeTests
	}
	if cmd.Flags().Changed("include-vendor") {
		idxConfig.IncludeVendor = indexIncludeVendor
	}

	bar := attachProgressBar(idxConfig)

	stats, err := idx.IndexProject(ctx, rootPath, idxConfig)
	finishProgressBar(bar)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	printIndexStats(stats)

	if !indexWatch {
		return nil
	}

	// Watch mode: keep reindexing on changes until interrupted.
	log.Printf("watching %s for changes (ctrl-c to stop)", rootPath)
	watcher, err := idx.Watch(ctx, rootPath, idxConfig, func(runStats *indexer.Statistics, runErr error) {
		if runErr != nil {
			log.Printf("reindex failed: %v", runErr)
			return
		}
		if runStats.FilesIndexed > 0 || runStats.FilesRemoved > 0 {
			log.Printf("reindexed: %d files, %d blocks, %d removed (%s)",
				runStats.FilesIndexed, runStats.BlocksStored, runStats.FilesRemoved,
				runStats.Duration.Round(time.Millisecond))
		}
	})
	if err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	<-ctx.Done()
	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	log.Println("watch mode stopped")
	return nil
}

// attachProgressBar wires a progress bar into the indexer config. The bar
// is created on the first callback, once the file total is known.
func attachProgressBar(config *indexer.Config) **progressbar.ProgressBar {
	var bar *progressbar.ProgressBar
	var once sync.Once

	config.OnProgress = func(p indexer.Progress) {
		once.Do(func() {
			bar = progressbar.NewOptions(p.TotalFiles,
				progressbar.OptionSetDescription("Indexing files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		})
		_ = bar.Add(1)
	}

	return &bar
}

func finishProgressBar(bar **progressbar.ProgressBar) {
	if bar != nil && *bar != nil {
		_ = (*bar).Finish()
	}
}

func printIndexStats(stats *indexer.Statistics) {
	fmt.Printf("Indexed %d files (%d skipped, %d removed): %d blocks in %s\n",
		stats.FilesIndexed, stats.FilesSkipped, stats.FilesRemoved,
		stats.BlocksStored, stats.Duration.Round(time.Millisecond))

	if stats.LinesDropped > 0 {
		vlogf("%d lines fell outside every block", stats.LinesDropped)
	}

	if stats.FilesFailed > 0 {
		fmt.Printf("%d files failed:\n", stats.FilesFailed)
		for _, msg := range stats.ErrorMessages {
			fmt.Printf("  %s\n", msg)
		}
	}
}
