// Package cli implements the goblocks command line interface.
package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/config"
	"github.com/dshills/goblocks/internal/storage"
)

var (
	cfgFile string
	dbFile  string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goblocks",
	Short: "Extract, split, index, and search Go declaration blocks",
	Long: `goblocks scans Go source files with a fast line-oriented extractor,
splits oversized files into grouped pieces, and maintains a searchable
SQLite index of every top-level declaration block.

The extractor is heuristic: it counts braces line by line instead of
parsing, which makes it fast and import-free but means malformed code
or unbalanced braces inside raw strings can skew block boundaries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .goblocks.yaml in cwd or $HOME)")
	rootCmd.PersistentFlags().StringVar(&dbFile, "db", "", "SQLite database file (default ~/.goblocks/goblocks.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the layered configuration and applies the --db override
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbFile != "" {
		cfg.Database.Path = dbFile
	}
	return cfg, nil
}

// openStore opens the SQLite index database, creating its directory if needed
func openStore(cfg *config.Config) (*storage.SQLiteStorage, string, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, "", err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	vlogf("using database %s", dbPath)
	return store, dbPath, nil
}

// vlogf logs only when --verbose is set
func vlogf(format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}
