package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// defaultIncludePattern matches every Go source file under the root.
const defaultIncludePattern = "**/*.go"

// compiledPattern holds a pattern string and its compiled globs
type compiledPattern struct {
	pattern  string
	glob     glob.Glob
	rootGlob glob.Glob // pattern minus a leading "**/", for paths in the root
}

// compilePattern compiles one glob pattern with '/' as the separator.
func compilePattern(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return compiledPattern{}, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	cp := compiledPattern{pattern: pattern, glob: g}

	// "**/*.go" should also match a root-level "main.go", which has no
	// separator for the "**/" segment to consume.
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		rg, err := glob.Compile(rest, '/')
		if err != nil {
			return compiledPattern{}, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		cp.rootGlob = rg
	}

	return cp, nil
}

func (cp compiledPattern) match(path string) bool {
	if cp.glob.Match(path) {
		return true
	}
	return cp.rootGlob != nil && !strings.Contains(path, "/") && cp.rootGlob.Match(path)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(path) {
			return true
		}
	}
	return false
}

// FileDiscovery walks a project tree and selects the Go files to index,
// matching include and exclude glob patterns against slash-separated
// paths relative to the root.
type FileDiscovery struct {
	rootDir      string
	includes     []compiledPattern
	excludes     []compiledPattern
	includeTests bool
}

// NewFileDiscovery creates a file discovery instance with compiled
// patterns. Patterns use '/' as the separator regardless of platform.
func NewFileDiscovery(rootDir string, includes, excludes []string, includeTests bool) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir:      rootDir,
		includeTests: includeTests,
	}

	for _, pattern := range includes {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		fd.includes = append(fd.includes, cp)
	}

	for _, pattern := range excludes {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		fd.excludes = append(fd.excludes, cp)
	}

	return fd, nil
}

// Discover walks the root and returns the matching files in walk order.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath == "." {
				return nil
			}
			if skipDirName(info.Name()) || fd.shouldExclude(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if !fd.includeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if fd.shouldExclude(relPath) {
			return nil
		}

		if matchesAny(relPath, fd.includes) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// shouldExclude checks if a path matches any exclude pattern. A directory
// also matches patterns written in the "vendor/**" form, so whole trees
// are pruned at the directory itself.
func (fd *FileDiscovery) shouldExclude(relPath string) bool {
	if matchesAny(relPath, fd.excludes) {
		return true
	}
	return matchesAny(relPath+"/**", fd.excludes)
}

// skipDirName reports whether a directory is never walked: hidden
// directories, "_"-prefixed directories, and testdata, mirroring the Go
// toolchain's treatment of those names.
func skipDirName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata"
}
