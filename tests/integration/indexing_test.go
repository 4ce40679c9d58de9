package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/goblocks/internal/indexer"
	"github.com/dshills/goblocks/internal/storage"
)

// IndexingTestSuite contains tests for the indexing pipeline
type IndexingTestSuite struct {
	suite.Suite
	storage     storage.Storage
	indexer     *indexer.Indexer
	fixturesDir string
	ctx         context.Context
}

// SetupSuite runs once before all tests
func (s *IndexingTestSuite) SetupSuite() {
	s.ctx = context.Background()

	wd, err := os.Getwd()
	s.Require().NoError(err)
	s.fixturesDir = filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	_, err = os.Stat(s.fixturesDir)
	s.Require().NoError(err, "fixtures directory should exist")
}

// SetupTest runs before each test
func (s *IndexingTestSuite) SetupTest() {
	store, err := storage.NewSQLiteStorage(":memory:")
	s.Require().NoError(err)
	s.storage = store

	s.indexer = indexer.New(s.storage)
}

// TearDownTest runs after each test
func (s *IndexingTestSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// TestFullIndexing indexes the fixture project and checks every count
// against the known fixture contents.
func (s *IndexingTestSuite) TestFullIndexing() {
	config := &indexer.Config{
		IncludeTests: true,
		Workers:      2,
	}

	stats, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
	s.Require().NoError(err, "indexing should succeed")
	s.Require().NotNil(stats)

	s.T().Logf("Indexing stats: %+v", stats)
	s.Equal(6, stats.FilesScanned, "fixture tree holds six Go files")
	s.Equal(6, stats.FilesIndexed)
	s.Equal(0, stats.FilesSkipped)
	s.Equal(0, stats.FilesFailed, "the scanner never rejects a readable file")
	s.Equal(18, stats.BlocksStored)
	s.Greater(stats.LinesDropped, 0, "const groups and blank lines fall outside blocks")
	s.Empty(stats.ErrorMessages)

	// Project metadata comes from the fixture go.mod
	project, err := s.storage.GetProject(s.ctx, s.fixturesDir)
	s.Require().NoError(err)
	s.Equal(s.fixturesDir, project.RootPath)
	s.Equal("github.com/dshills/goblocks/testfixtures", project.ModuleName)
	s.Equal("1.25", project.GoVersion)
	s.Equal(6, project.TotalFiles)
	s.Equal(18, project.TotalBlocks)
	s.False(project.LastIndexedAt.IsZero())

	// Per-kind counts in the status report
	status, err := s.storage.GetStatus(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal(6, status.FilesCount)
	s.Equal(18, status.BlocksCount)
	s.Equal(9, status.KindCounts["function"])
	s.Equal(4, status.KindCounts["method"])
	s.Equal(2, status.KindCounts["struct"])
	s.Equal(1, status.KindCounts["interface"])
	s.Equal(2, status.KindCounts["type"])
	s.Equal(1, status.UnterminatedCount, "broken.go never closes its braces")
	s.True(status.Health.DatabaseAccessible)
	s.True(status.Health.FTSIndexBuilt)
}

// TestIndexingWithoutTests leaves *_test.go files out of the index
func (s *IndexingTestSuite) TestIndexingWithoutTests() {
	config := &indexer.Config{
		IncludeTests: false,
	}

	stats, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
	s.Require().NoError(err)

	s.Equal(5, stats.FilesIndexed, "server_test.go should be excluded")
	s.Equal(16, stats.BlocksStored)
}

// TestIncrementalIndexing re-indexes without changes and expects skips
func (s *IndexingTestSuite) TestIncrementalIndexing() {
	config := &indexer.Config{
		IncludeTests: true,
	}

	stats1, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
	s.Require().NoError(err)
	s.Equal(6, stats1.FilesIndexed)

	stats2, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
	s.Require().NoError(err)
	s.T().Logf("Re-indexing: %d indexed, %d skipped", stats2.FilesIndexed, stats2.FilesSkipped)

	s.Equal(0, stats2.FilesIndexed, "should skip unchanged files")
	s.Equal(6, stats2.FilesSkipped, "should skip all previously indexed files")
	s.Equal(0, stats2.BlocksStored)

	// Force bypasses the content hash check
	config.ForceReindex = true
	stats3, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
	s.Require().NoError(err)
	s.Equal(6, stats3.FilesIndexed, "force should re-extract every file")
	s.Equal(18, stats3.BlocksStored)
}

// TestModifiedFileReindexing indexes a copy, edits one file, and checks
// only that file is re-extracted.
func (s *IndexingTestSuite) TestModifiedFileReindexing() {
	tempDir := s.T().TempDir()
	s.copyFixture(tempDir, "server.go")
	s.copyFixture(tempDir, "handler.go")

	config := &indexer.Config{IncludeTests: true}

	stats1, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(2, stats1.FilesIndexed)
	s.Equal(8, stats1.BlocksStored)

	// Append a declaration to handler.go
	time.Sleep(10 * time.Millisecond)
	path := filepath.Join(tempDir, "handler.go")
	content, err := os.ReadFile(path)
	s.Require().NoError(err)
	content = append(content, []byte("\n// NopHandler ignores every request.\nfunc NopHandler(w http.ResponseWriter, r *http.Request) {}\n")...)
	s.Require().NoError(os.WriteFile(path, content, 0644))

	stats2, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(1, stats2.FilesIndexed, "only the modified file is re-extracted")
	s.Equal(1, stats2.FilesSkipped)
	s.Equal(4, stats2.BlocksStored, "handler.go now has four blocks")

	project, err := s.storage.GetProject(s.ctx, tempDir)
	s.Require().NoError(err)
	s.Equal(9, project.TotalBlocks)
}

// TestDeletedFilePruning removes a file between runs and checks the
// index forgets it.
func (s *IndexingTestSuite) TestDeletedFilePruning() {
	tempDir := s.T().TempDir()
	s.copyFixture(tempDir, "server.go")
	s.copyFixture(tempDir, "client.go")

	config := &indexer.Config{IncludeTests: true}

	stats1, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(2, stats1.FilesIndexed)

	s.Require().NoError(os.Remove(filepath.Join(tempDir, "client.go")))

	stats2, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(1, stats2.FilesRemoved, "deleted file should be pruned")

	project, err := s.storage.GetProject(s.ctx, tempDir)
	s.Require().NoError(err)
	s.Equal(1, project.TotalFiles)
	s.Equal(5, project.TotalBlocks, "only server.go blocks remain")
}

// TestUnterminatedBlockSurvives indexes the deliberately broken fixture
// and checks the partial block is stored rather than rejected.
func (s *IndexingTestSuite) TestUnterminatedBlockSurvives() {
	tempDir := s.T().TempDir()
	s.copyFixture(tempDir, "broken.go")

	config := &indexer.Config{IncludeTests: true}

	stats, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(1, stats.FilesIndexed)
	s.Equal(0, stats.FilesFailed)
	s.Equal(1, stats.BlocksStored)

	project, err := s.storage.GetProject(s.ctx, tempDir)
	s.Require().NoError(err)

	status, err := s.storage.GetStatus(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal(1, status.UnterminatedCount)
}

// TestEmptyDirectory indexes a directory with no Go files
func (s *IndexingTestSuite) TestEmptyDirectory() {
	tempDir := s.T().TempDir()

	config := &indexer.Config{IncludeTests: true}

	stats, err := s.indexer.IndexProject(s.ctx, tempDir, config)
	s.Require().NoError(err)
	s.Equal(0, stats.FilesScanned)
	s.Equal(0, stats.FilesIndexed)
	s.Equal(0, stats.BlocksStored)
}

// TestConcurrentIndexing runs two overlapping index calls on one root
// and expects the per-root lock to reject at most one of them.
func (s *IndexingTestSuite) TestConcurrentIndexing() {
	config := &indexer.Config{
		IncludeTests: true,
		Workers:      4,
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = s.indexer.IndexProject(s.ctx, s.fixturesDir, config)
		}(i)
	}
	wg.Wait()

	successCount := 0
	busyCount := 0
	for _, err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, indexer.ErrIndexingInProgress):
			busyCount++
		default:
			s.Failf("unexpected error", "got %v", err)
		}
	}

	s.GreaterOrEqual(successCount, 1, "at least one indexing run should succeed")
	s.Equal(2, successCount+busyCount)

	// Whatever the interleaving, the stored data must be complete.
	project, err := s.storage.GetProject(s.ctx, s.fixturesDir)
	s.Require().NoError(err)
	s.Equal(18, project.TotalBlocks)
}

// copyFixture copies one fixture file into dir
func (s *IndexingTestSuite) copyFixture(dir, name string) {
	s.T().Helper()
	content, err := os.ReadFile(filepath.Join(s.fixturesDir, name))
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(filepath.Join(dir, name), content, 0644))
}

// TestIndexingTestSuite runs the suite
func TestIndexingTestSuite(t *testing.T) {
	suite.Run(t, new(IndexingTestSuite))
}
