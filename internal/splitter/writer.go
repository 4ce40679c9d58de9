package splitter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrOutputExists is returned when a planned file already exists and
	// Force is not set.
	ErrOutputExists = errors.New("output file already exists")
)

// WriteOptions control how a plan is applied to the filesystem
type WriteOptions struct {
	OutputDir string
	Force     bool // Overwrite existing files
	DryRun    bool // Resolve paths and report, write nothing
}

// WriteResult reports what a Write call did (or, for a dry run, would do)
type WriteResult struct {
	Paths        []string // Absolute output paths in plan order
	BytesWritten int64
	DryRun       bool
}

// Write applies a split plan to the output directory. Existing files fail
// the whole write unless Force is set; a dry run resolves and validates
// paths without touching anything.
func (s *Splitter) Write(plan *Plan, opts WriteOptions) (*WriteResult, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}

	outDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	result := &WriteResult{DryRun: opts.DryRun}

	// Collision check happens up front so a failed write never leaves a
	// partial split behind.
	if !opts.Force {
		for _, pf := range plan.Files {
			path := filepath.Join(outDir, pf.Name)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
			}
		}
	}

	if opts.DryRun {
		for _, pf := range plan.Files {
			result.Paths = append(result.Paths, filepath.Join(outDir, pf.Name))
		}
		return result, nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, pf := range plan.Files {
		path := filepath.Join(outDir, pf.Name)
		content := plan.Render(pf)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", pf.Name, err)
		}
		result.Paths = append(result.Paths, path)
		result.BytesWritten += int64(len(content))
	}

	return result, nil
}
