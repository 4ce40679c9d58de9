package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/internal/splitter"
)

var (
	splitOutputDir string
	splitStrategy  string
	splitDryRun    bool
	splitForce     bool
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a Go file into multiple files by grouping strategy",
	Long: `Split extracts the declaration blocks of one Go source file and writes
them into multiple files under the output directory. Every output file
repeats the original header (package clause and imports), so the results
usually want a goimports pass afterwards.

Strategies:
  decl      one file per declaration
  kind      types.go, funcs.go, methods.go buckets
  receiver  each type with its methods and constructors (default)

Examples:
  # Preview the plan without writing anything
  goblocks split ./models.go -o ./models --dry-run

  # Split by receiver, overwriting existing output files
  goblocks split ./models.go -o ./models --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVarP(&splitOutputDir, "output", "o", "", "directory to write split files into (required)")
	splitCmd.Flags().StringVar(&splitStrategy, "strategy", "", "grouping strategy: decl, kind, or receiver")
	splitCmd.Flags().BoolVar(&splitDryRun, "dry-run", false, "compute the plan without writing files")
	splitCmd.Flags().BoolVar(&splitForce, "force", false, "overwrite existing output files")
	_ = splitCmd.MarkFlagRequired("output")
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategy := cfg.Split.Strategy
	if splitStrategy != "" {
		strategy = splitStrategy
	}
	force := cfg.Split.Force || splitForce

	sp, err := splitter.NewWithStrategy(splitter.Strategy(strategy))
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	ext := extractor.NewWithOptions(extractor.Options{
		AttachComments: cfg.Extract.AttachComments,
		FlushTrailing:  cfg.Extract.FlushTrailing,
	})

	result, err := ext.ExtractFile(path)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	plan, err := sp.Plan(result)
	if err != nil {
		return fmt.Errorf("split planning failed: %w", err)
	}

	writeResult, err := sp.Write(plan, splitter.WriteOptions{
		OutputDir: splitOutputDir,
		Force:     force,
		DryRun:    splitDryRun,
	})
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	printSplitPlan(plan, writeResult)
	return nil
}

func printSplitPlan(plan *splitter.Plan, result *splitter.WriteResult) {
	action := "wrote"
	if result.DryRun {
		action = "would write"
	}

	fmt.Printf("%s: %d blocks into %d files (%s strategy)\n",
		plan.SourcePath, plan.TotalBlocks(), len(plan.Files), plan.Strategy)

	for i, pf := range plan.Files {
		fmt.Printf("  %s %-24s %d blocks", action, pf.Name, len(pf.Blocks))
		if i < len(result.Paths) {
			fmt.Printf("  -> %s", result.Paths[i])
		}
		fmt.Println()
	}

	if !result.DryRun {
		fmt.Printf("%d bytes written\n", result.BytesWritten)
	}
}
