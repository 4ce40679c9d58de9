package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/storage"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show index status for a project",
	Long: `Status reports what the index knows about a project: file and block
counts, block kinds, unterminated blocks, index size, and health checks.

Without a path it lists every indexed project in the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, dbPath, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		return printProjectList(ctx, store, dbPath)
	}

	rootPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	project, err := store.GetProject(ctx, rootPath)
	if err == storage.ErrNotFound {
		return fmt.Errorf("project %s is not indexed: run \"goblocks index %s\" first", rootPath, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	status, err := store.GetStatus(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to load status: %w", err)
	}

	printProjectStatus(status, dbPath)
	return nil
}

func printProjectList(ctx context.Context, store storage.Storage, dbPath string) error {
	projects, err := store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	fmt.Printf("Database: %s\n", dbPath)
	if len(projects) == 0 {
		fmt.Println("No projects indexed yet.")
		return nil
	}

	fmt.Printf("%d indexed project(s):\n\n", len(projects))
	for _, p := range projects {
		name := p.ModuleName
		if name == "" {
			name = "(no module)"
		}
		fmt.Printf("  %s\n", p.RootPath)
		fmt.Printf("    %s: %s files, %s blocks, indexed %s\n",
			name, formatNumber(p.TotalFiles), formatNumber(p.TotalBlocks),
			p.LastIndexedAt.Format(time.RFC3339))
	}
	return nil
}

func printProjectStatus(status *storage.ProjectStatus, dbPath string) {
	p := status.Project

	fmt.Printf("Project: %s\n", p.RootPath)
	if p.ModuleName != "" {
		fmt.Printf("Module:  %s", p.ModuleName)
		if p.GoVersion != "" {
			fmt.Printf(" (go %s)", p.GoVersion)
		}
		fmt.Println()
	}
	fmt.Printf("Indexed: %s\n", status.LastIndexedAt.Format(time.RFC3339))
	fmt.Println()

	fmt.Printf("Files:  %s\n", formatNumber(status.FilesCount))
	fmt.Printf("Blocks: %s\n", formatNumber(status.BlocksCount))
	for _, kind := range sortedKinds(status.KindCounts) {
		fmt.Printf("  %-10s %s\n", kind, formatNumber(status.KindCounts[kind]))
	}
	if status.UnterminatedCount > 0 {
		fmt.Printf("Unterminated blocks: %d\n", status.UnterminatedCount)
	}
	if status.TotalDroppedLines > 0 {
		fmt.Printf("Dropped lines: %s\n", formatNumber(status.TotalDroppedLines))
	}
	fmt.Println()

	fmt.Printf("Database: %s (%.2f MB, %s driver, %s build)\n",
		dbPath, status.IndexSizeMB, storage.DriverName, storage.BuildMode)
	fmt.Printf("Health:   database %s, FTS index %s\n",
		healthWord(status.Health.DatabaseAccessible), healthWord(status.Health.FTSIndexBuilt))
}

func sortedKinds(counts map[string]int) []string {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func healthWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
