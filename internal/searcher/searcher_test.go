package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"testing"
	"time"
	"unicode"

	"github.com/dshills/goblocks/internal/storage"
	"github.com/dshills/goblocks/pkg/types"
)

// setupTestSearcher creates a searcher backed by in-memory storage with a test project
func setupTestSearcher(t *testing.T) (*Searcher, storage.Storage, *storage.Project) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	project := &storage.Project{
		RootPath:     "/test/search",
		ModuleName:   "example.com/search",
		GoVersion:    "1.25",
		IndexVersion: "1.0.0",
	}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	return NewSearcher(store), store, project
}

// seedFileBlocks stores a file and its blocks through the normal write path.
// Block IDs are assigned on the passed pointers.
func seedFileBlocks(t *testing.T, store storage.Storage, project *storage.Project, filePath string, blocks ...*storage.Block) *storage.File {
	t.Helper()
	ctx := context.Background()

	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    filePath,
		PackageName: "demo",
		ContentHash: sha256.Sum256([]byte(filePath)),
		ModTime:     time.Now(),
		SizeBytes:   int64(len(filePath)),
		BlockCount:  len(blocks),
	}
	if err := store.UpsertFile(ctx, file); err != nil {
		t.Fatalf("UpsertFile failed: %v", err)
	}

	if err := store.ReplaceFileBlocks(ctx, file.ID, blocks); err != nil {
		t.Fatalf("ReplaceFileBlocks failed: %v", err)
	}

	return file
}

// funcBlock builds a function block for seeding
func funcBlock(name string, startLine int, doc, content string) *storage.Block {
	if content == "" {
		content = fmt.Sprintf("func %s() {\n\treturn\n}", name)
	}
	return &storage.Block{
		Name:        name,
		Kind:        "function",
		Exported:    name != "" && unicode.IsUpper(rune(name[0])),
		StartLine:   startLine,
		EndLine:     startLine + 2,
		LineCount:   3,
		Content:     content,
		DocComment:  doc,
		ContentHash: sha256.Sum256([]byte(content)),
		Terminated:  true,
	}
}

// TestNewSearcher tests searcher construction
func TestNewSearcher(t *testing.T) {
	search, _, _ := setupTestSearcher(t)

	if search == nil {
		t.Fatal("expected non-nil searcher")
	}

	if search.cache == nil {
		t.Error("expected cache to be initialized")
	}
}

// TestNewSearcherWithCache tests configured cache settings
func TestNewSearcherWithCache(t *testing.T) {
	_, store, _ := setupTestSearcher(t)

	search := NewSearcherWithCache(store, 16, time.Hour)

	req := SearchRequest{Query: "test"}
	if err := search.validateRequest(&req); err != nil {
		t.Fatalf("validateRequest failed: %v", err)
	}

	if req.CacheTTL != time.Hour {
		t.Errorf("expected configured TTL 1h, got %v", req.CacheTTL)
	}

	// Non-positive settings fall back to the defaults
	fallback := NewSearcherWithCache(store, 0, 0)

	req = SearchRequest{Query: "test"}
	if err := fallback.validateRequest(&req); err != nil {
		t.Fatalf("validateRequest failed: %v", err)
	}

	if req.CacheTTL != 5*time.Minute {
		t.Errorf("expected default TTL 5m, got %v", req.CacheTTL)
	}
}

// TestValidateRequest tests request validation and default values
func TestValidateRequest(t *testing.T) {
	s := &Searcher{}

	tests := []struct {
		name        string
		req         SearchRequest
		expectError bool
		validate    func(t *testing.T, req *SearchRequest)
	}{
		{
			name: "EmptyQuery_ReturnsError",
			req: SearchRequest{
				Query: "",
				Limit: 10,
			},
			expectError: true,
		},
		{
			name: "ZeroLimit_DefaultsTo10",
			req: SearchRequest{
				Query: "test",
				Limit: 0,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.Limit != 10 {
					t.Errorf("expected default limit 10, got %d", req.Limit)
				}
			},
		},
		{
			name: "NegativeLimit_DefaultsTo10",
			req: SearchRequest{
				Query: "test",
				Limit: -5,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.Limit != 10 {
					t.Errorf("expected default limit 10, got %d", req.Limit)
				}
			},
		},
		{
			name: "ExcessiveLimit_CappedAt100",
			req: SearchRequest{
				Query: "test",
				Limit: 500,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.Limit != 100 {
					t.Errorf("expected limit capped at 100, got %d", req.Limit)
				}
			},
		},
		{
			name: "EmptyMode_DefaultsToHybrid",
			req: SearchRequest{
				Query: "test",
				Limit: 10,
				Mode:  "",
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.Mode != SearchModeHybrid {
					t.Errorf("expected default mode hybrid, got %s", req.Mode)
				}
			},
		},
		{
			name: "ZeroRRFConstant_DefaultsTo60",
			req: SearchRequest{
				Query:       "test",
				Limit:       10,
				RRFConstant: 0,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.RRFConstant != 60 {
					t.Errorf("expected default RRF constant 60, got %f", req.RRFConstant)
				}
			},
		},
		{
			name: "ZeroCacheTTL_DefaultsTo5Minutes",
			req: SearchRequest{
				Query:    "test",
				Limit:    10,
				CacheTTL: 0,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.CacheTTL != 5*time.Minute {
					t.Errorf("expected default cache TTL 5m, got %v", req.CacheTTL)
				}
			},
		},
		{
			name: "ExplicitValues_Unchanged",
			req: SearchRequest{
				Query:       "test",
				Limit:       25,
				Mode:        SearchModeText,
				RRFConstant: 30,
				CacheTTL:    time.Hour,
			},
			expectError: false,
			validate: func(t *testing.T, req *SearchRequest) {
				if req.Limit != 25 || req.Mode != SearchModeText || req.RRFConstant != 30 || req.CacheTTL != time.Hour {
					t.Errorf("explicit values were modified: %+v", req)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateRequest(&tt.req)

			if tt.expectError && err == nil {
				t.Fatal("expected error but got none")
			}

			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, &tt.req)
			}
		})
	}
}

// TestApplyRRF tests the Reciprocal Rank Fusion algorithm
func TestApplyRRF(t *testing.T) {
	s := &Searcher{}

	tests := []struct {
		name        string
		nameResults []storage.NameResult
		textResults []storage.TextResult
		k           float64
		validate    func(t *testing.T, results []rankedResult)
	}{
		{
			name: "BothListsWithOverlap",
			nameResults: []storage.NameResult{
				{BlockID: 1, NameScore: 1.0},
				{BlockID: 2, NameScore: 0.75},
				{BlockID: 3, NameScore: 0.5},
			},
			textResults: []storage.TextResult{
				{BlockID: 2, BM25Score: 0.9},
				{BlockID: 3, BM25Score: 0.8},
				{BlockID: 4, BM25Score: 0.7},
			},
			k: 60,
			validate: func(t *testing.T, results []rankedResult) {
				// Blocks 2 and 3 appear in both lists, so they rank higher:
				// Block 2: 1/(60+2) + 1/(60+1) = 0.0161 + 0.0164 = 0.0325
				// Block 3: 1/(60+3) + 1/(60+2) = 0.0159 + 0.0161 = 0.0320
				// Block 1: 1/(60+1) = 0.0164
				// Block 4: 1/(60+3) = 0.0159

				if len(results) != 4 {
					t.Fatalf("expected 4 results, got %d", len(results))
				}

				// Verify results are sorted by score (descending)
				for i := 1; i < len(results); i++ {
					if results[i-1].score < results[i].score {
						t.Errorf("results not sorted: result[%d] score %f < result[%d] score %f",
							i-1, results[i-1].score, i, results[i].score)
					}
				}

				// Verify ranks are assigned sequentially
				for i, result := range results {
					expectedRank := i + 1
					if result.rank != expectedRank {
						t.Errorf("result %d has rank %d, expected %d", i, result.rank, expectedRank)
					}
				}

				if results[0].blockID != 2 {
					t.Errorf("expected block 2 as top result, got block %d", results[0].blockID)
				}
			},
		},
		{
			name: "NoOverlap",
			nameResults: []storage.NameResult{
				{BlockID: 1, NameScore: 1.0},
				{BlockID: 2, NameScore: 0.75},
			},
			textResults: []storage.TextResult{
				{BlockID: 3, BM25Score: 0.9},
				{BlockID: 4, BM25Score: 0.8},
			},
			k: 60,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 4 {
					t.Fatalf("expected 4 results, got %d", len(results))
				}

				// No overlap bonus: rank 1 entries score 1/61, rank 2 entries 1/62
				for _, result := range results {
					if result.score < 0.0 || result.score > 0.02 {
						t.Errorf("unexpected RRF score %f for block %d", result.score, result.blockID)
					}
				}
			},
		},
		{
			name: "NameMatchWinsScoreTie",
			nameResults: []storage.NameResult{
				{BlockID: 10, NameScore: 1.0},
			},
			textResults: []storage.TextResult{
				{BlockID: 20, BM25Score: 0.9},
			},
			k: 60,
			validate: func(t *testing.T, results []rankedResult) {
				// Both blocks sit at rank 1 of their list, so scores tie at
				// 1/61. The name match takes the top spot.
				if len(results) != 2 {
					t.Fatalf("expected 2 results, got %d", len(results))
				}

				if results[0].blockID != 10 {
					t.Errorf("expected name-matched block 10 first, got block %d", results[0].blockID)
				}

				if !results[0].nameHit {
					t.Error("expected top result to be marked as name hit")
				}

				if results[1].nameHit {
					t.Error("expected text-only result to not be marked as name hit")
				}
			},
		},
		{
			name:        "EmptyNameResults",
			nameResults: []storage.NameResult{},
			textResults: []storage.TextResult{
				{BlockID: 1, BM25Score: 0.9},
				{BlockID: 2, BM25Score: 0.8},
			},
			k: 60,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 2 {
					t.Fatalf("expected 2 results, got %d", len(results))
				}

				if results[0].blockID != 1 {
					t.Errorf("expected block 1 first, got block %d", results[0].blockID)
				}
			},
		},
		{
			name:        "EmptyTextResults",
			nameResults: []storage.NameResult{{BlockID: 1, NameScore: 1.0}},
			textResults: []storage.TextResult{},
			k:           60,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 1 {
					t.Fatalf("expected 1 result, got %d", len(results))
				}
			},
		},
		{
			name:        "BothEmpty",
			nameResults: []storage.NameResult{},
			textResults: []storage.TextResult{},
			k:           60,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 0 {
					t.Fatalf("expected 0 results, got %d", len(results))
				}
			},
		},
		{
			name: "CustomKValue",
			nameResults: []storage.NameResult{
				{BlockID: 1, NameScore: 1.0},
			},
			textResults: []storage.TextResult{
				{BlockID: 1, BM25Score: 0.9},
			},
			k: 30,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 1 {
					t.Fatalf("expected 1 result, got %d", len(results))
				}

				// With k=30, rank 1 in both: 1/(30+1) + 1/(30+1) = 2/31
				expectedScore := 2.0 / 31.0
				if abs(results[0].score-expectedScore) > 0.0001 {
					t.Errorf("expected score ~%f, got %f", expectedScore, results[0].score)
				}
			},
		},
		{
			name: "ZeroKValue_DefaultsTo60",
			nameResults: []storage.NameResult{
				{BlockID: 1, NameScore: 1.0},
			},
			textResults: []storage.TextResult{},
			k:           0,
			validate: func(t *testing.T, results []rankedResult) {
				if len(results) != 1 {
					t.Fatalf("expected 1 result, got %d", len(results))
				}

				// With k=60 (default), rank 1: 1/(60+1) = 1/61
				expectedScore := 1.0 / 61.0
				if abs(results[0].score-expectedScore) > 0.0001 {
					t.Errorf("expected score ~%f, got %f", expectedScore, results[0].score)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := s.applyRRF(tt.nameResults, tt.textResults, tt.k)
			tt.validate(t, results)
		})
	}
}

// TestSortRankedResults tests sorting of ranked results
func TestSortRankedResults(t *testing.T) {
	tests := []struct {
		name     string
		input    []rankedResult
		expected []int64 // Expected block IDs in order
	}{
		{
			name: "AlreadySorted",
			input: []rankedResult{
				{blockID: 1, score: 0.9},
				{blockID: 2, score: 0.8},
				{blockID: 3, score: 0.7},
			},
			expected: []int64{1, 2, 3},
		},
		{
			name: "ReverseSorted",
			input: []rankedResult{
				{blockID: 1, score: 0.7},
				{blockID: 2, score: 0.8},
				{blockID: 3, score: 0.9},
			},
			expected: []int64{3, 2, 1},
		},
		{
			name: "EqualScores_OrderedByID",
			input: []rankedResult{
				{blockID: 3, score: 0.8},
				{blockID: 1, score: 0.8},
				{blockID: 2, score: 0.8},
			},
			expected: []int64{1, 2, 3},
		},
		{
			name: "EqualScores_NameHitFirst",
			input: []rankedResult{
				{blockID: 1, score: 0.8},
				{blockID: 2, score: 0.8, nameHit: true},
			},
			expected: []int64{2, 1},
		},
		{
			name: "MixedScores",
			input: []rankedResult{
				{blockID: 4, score: 0.5},
				{blockID: 1, score: 0.9},
				{blockID: 3, score: 0.7},
				{blockID: 2, score: 0.8},
			},
			expected: []int64{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]rankedResult, len(tt.input))
			copy(results, tt.input)

			sortRankedResults(results)

			for i, expectedID := range tt.expected {
				if results[i].blockID != expectedID {
					t.Errorf("position %d: expected block %d, got %d", i, expectedID, results[i].blockID)
				}
			}

			// Verify descending order
			for i := 1; i < len(results); i++ {
				if results[i-1].score < results[i].score {
					t.Errorf("results not in descending order at position %d", i)
				}
			}
		})
	}
}

// TestComputeQueryHash tests query hash computation
func TestComputeQueryHash(t *testing.T) {
	tests := []struct {
		name     string
		req1     SearchRequest
		req2     SearchRequest
		shouldEq bool
	}{
		{
			name: "IdenticalRequests",
			req1: SearchRequest{
				Query:     "test query",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			req2: SearchRequest{
				Query:     "test query",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			shouldEq: true,
		},
		{
			name: "DifferentQuery",
			req1: SearchRequest{
				Query:     "query one",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			req2: SearchRequest{
				Query:     "query two",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			shouldEq: false,
		},
		{
			name: "DifferentMode",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeName,
				ProjectID: 1,
			},
			shouldEq: false,
		},
		{
			name: "DifferentProject",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 2,
			},
			shouldEq: false,
		},
		{
			name: "WithFilters",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters: &storage.SearchFilters{
					Kinds:        []string{"function", "method"},
					Roles:        []string{"constructor"},
					Packages:     []string{"extractor"},
					FilePattern:  "*.go",
					Receiver:     "Server",
					ExportedOnly: true,
				},
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters: &storage.SearchFilters{
					Kinds:        []string{"function", "method"},
					Roles:        []string{"constructor"},
					Packages:     []string{"extractor"},
					FilePattern:  "*.go",
					Receiver:     "Server",
					ExportedOnly: true,
				},
			},
			shouldEq: true,
		},
		{
			name: "DifferentFilters",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters: &storage.SearchFilters{
					Kinds: []string{"function"},
				},
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters: &storage.SearchFilters{
					Kinds: []string{"method"},
				},
			},
			shouldEq: false,
		},
		{
			name: "ExportedOnlyChangesHash",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters:   &storage.SearchFilters{ExportedOnly: true},
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters:   &storage.SearchFilters{ExportedOnly: false},
			},
			shouldEq: false,
		},
		{
			name: "OneWithFiltersOneWithout",
			req1: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters:   &storage.SearchFilters{Kinds: []string{"function"}},
			},
			req2: SearchRequest{
				Query:     "test",
				Mode:      SearchModeHybrid,
				ProjectID: 1,
				Filters:   nil,
			},
			shouldEq: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash1 := computeQueryHash(tt.req1)
			hash2 := computeQueryHash(tt.req2)

			equal := hash1 == hash2

			if tt.shouldEq && !equal {
				t.Error("expected hashes to be equal but they differ")
			}

			if !tt.shouldEq && equal {
				t.Error("expected hashes to differ but they are equal")
			}
		})
	}
}

// TestCheckCacheMiss tests lookup of an uncached query
func TestCheckCacheMiss(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "test",
		Mode:      SearchModeHybrid,
		ProjectID: 1,
		UseCache:  true,
	}

	resp, err := search.checkCache(ctx, req)

	if err == nil {
		t.Error("expected cache miss error")
	}

	if resp != nil {
		t.Error("expected nil response on cache miss")
	}
}

// TestStoreAndCheckCache tests the store/lookup round trip
func TestStoreAndCheckCache(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "test",
		Mode:      SearchModeHybrid,
		ProjectID: 1,
		CacheTTL:  time.Minute,
	}

	resp := &SearchResponse{
		Results: []types.SearchResult{
			{BlockID: 1, Rank: 1, RelevanceScore: 0.9, Name: "CachedFunc", File: &types.FileInfo{Path: "a.go"}},
		},
		TotalResults: 1,
		SearchMode:   SearchModeHybrid,
	}

	if err := search.storeInCache(ctx, req, resp); err != nil {
		t.Fatalf("storeInCache failed: %v", err)
	}

	cached, err := search.checkCache(ctx, req)
	if err != nil {
		t.Fatalf("checkCache failed after store: %v", err)
	}

	if cached.TotalResults != 1 || len(cached.Results) != 1 {
		t.Fatalf("unexpected cached response: %+v", cached)
	}

	if cached.Results[0].Name != "CachedFunc" {
		t.Errorf("expected cached result CachedFunc, got %s", cached.Results[0].Name)
	}

	// Mutating the returned copy must not corrupt the cached entry
	cached.Results[0].Name = "Mutated"
	cached.Results[0].File.Path = "mutated.go"

	again, err := search.checkCache(ctx, req)
	if err != nil {
		t.Fatalf("second checkCache failed: %v", err)
	}

	if again.Results[0].Name != "CachedFunc" {
		t.Error("cache entry was mutated through a returned copy")
	}

	if again.Results[0].File.Path != "a.go" {
		t.Error("cached file info was mutated through a returned copy")
	}
}

// TestCheckCacheExpired tests that expired entries are evicted on lookup
func TestCheckCacheExpired(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "test",
		Mode:      SearchModeHybrid,
		ProjectID: 1,
		CacheTTL:  -time.Minute, // Already expired when stored
	}

	resp := &SearchResponse{
		Results:      []types.SearchResult{{BlockID: 1, Rank: 1}},
		TotalResults: 1,
	}

	if err := search.storeInCache(ctx, req, resp); err != nil {
		t.Fatalf("storeInCache failed: %v", err)
	}

	if _, err := search.checkCache(ctx, req); err == nil {
		t.Error("expected error for expired cache entry")
	}

	// Expired entry should have been removed
	if search.cache.Len() != 0 {
		t.Errorf("expected expired entry to be removed, cache has %d entries", search.cache.Len())
	}
}

// TestInvalidateCache tests cache invalidation
func TestInvalidateCache(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "test",
		Mode:      SearchModeHybrid,
		ProjectID: 1,
		CacheTTL:  time.Minute,
	}

	resp := &SearchResponse{
		Results:      []types.SearchResult{{BlockID: 1, Rank: 1}},
		TotalResults: 1,
	}

	if err := search.storeInCache(ctx, req, resp); err != nil {
		t.Fatalf("storeInCache failed: %v", err)
	}

	if err := search.InvalidateCache(ctx, 1); err != nil {
		t.Fatalf("InvalidateCache failed: %v", err)
	}

	if _, err := search.checkCache(ctx, req); err == nil {
		t.Error("expected cache miss after invalidation")
	}
}

// TestEvictLRU tests cache downsizing
func TestEvictLRU(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := SearchRequest{
			Query:     fmt.Sprintf("query %d", i),
			Mode:      SearchModeHybrid,
			ProjectID: 1,
			CacheTTL:  time.Minute,
		}
		resp := &SearchResponse{
			Results:      []types.SearchResult{{BlockID: int64(i + 1), Rank: 1}},
			TotalResults: 1,
		}
		if err := search.storeInCache(ctx, req, resp); err != nil {
			t.Fatalf("storeInCache failed: %v", err)
		}
	}

	// Within limit: no change
	if err := search.EvictLRU(ctx, 10); err != nil {
		t.Fatalf("EvictLRU failed: %v", err)
	}

	if search.cache.Len() != 3 {
		t.Errorf("expected 3 entries after no-op eviction, got %d", search.cache.Len())
	}

	// Over limit: cache is replaced with a smaller one
	if err := search.EvictLRU(ctx, 2); err != nil {
		t.Fatalf("EvictLRU failed: %v", err)
	}

	if search.cache.Len() != 0 {
		t.Errorf("expected empty cache after downsizing, got %d entries", search.cache.Len())
	}
}

// Integration tests with real storage

// TestSearchModeName tests declaration-name search
func TestSearchModeName(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "parse.go",
		funcBlock("ParseConfig", 5, "ParseConfig reads the config file.", ""),
		funcBlock("ParseFile", 15, "", ""),
		funcBlock("WriteOutput", 25, "", ""),
	)

	req := SearchRequest{
		Query:     "Parse",
		Limit:     10,
		Mode:      SearchModeName,
		ProjectID: project.ID,
		UseCache:  false,
	}

	resp, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.SearchMode != SearchModeName {
		t.Errorf("expected SearchMode name, got %s", resp.SearchMode)
	}

	if resp.NameResults != 2 {
		t.Errorf("expected 2 name results, got %d", resp.NameResults)
	}

	if resp.TextResults != 0 {
		t.Errorf("expected zero TextResults in name mode, got %d", resp.TextResults)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	// Both are prefix matches, so alphabetical order decides
	if resp.Results[0].Name != "ParseConfig" || resp.Results[1].Name != "ParseFile" {
		t.Errorf("unexpected result order: %s, %s", resp.Results[0].Name, resp.Results[1].Name)
	}

	if resp.Duration == 0 {
		t.Error("expected non-zero Duration")
	}
}

// TestSearchModeNameExactMatch tests that exact matches score 1.0
func TestSearchModeNameExactMatch(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "parse.go",
		funcBlock("ParseFile", 5, "", ""),
		funcBlock("ParseFileHeader", 15, "", ""),
	)

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "ParseFile",
		Limit:     10,
		Mode:      SearchModeName,
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	if resp.Results[0].Name != "ParseFile" {
		t.Errorf("expected exact match first, got %s", resp.Results[0].Name)
	}

	if resp.Results[0].RelevanceScore != 1.0 {
		t.Errorf("expected exact match score 1.0, got %f", resp.Results[0].RelevanceScore)
	}
}

// TestSearchModeText tests full-text search
func TestSearchModeText(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "validate.go",
		funcBlock("CheckAddress", 5,
			"CheckAddress validates an email address before delivery.",
			"func CheckAddress(s string) error {\n\treturn nil\n}"),
		funcBlock("Unrelated", 15, "", ""),
	)

	req := SearchRequest{
		Query:     "email address",
		Limit:     10,
		Mode:      SearchModeText,
		ProjectID: project.ID,
		UseCache:  false,
	}

	resp, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.SearchMode != SearchModeText {
		t.Errorf("expected SearchMode text, got %s", resp.SearchMode)
	}

	if resp.TextResults != 1 {
		t.Errorf("expected 1 text result, got %d", resp.TextResults)
	}

	if resp.NameResults != 0 {
		t.Errorf("expected zero NameResults in text mode, got %d", resp.NameResults)
	}

	if len(resp.Results) != 1 || resp.Results[0].Name != "CheckAddress" {
		t.Fatalf("expected CheckAddress, got %+v", resp.Results)
	}
}

// TestSearchModeHybrid tests hybrid search with RRF
func TestSearchModeHybrid(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	// Retry matches both legs: its name contains the query and its body
	// carries the token. RetryWithBackoff matches the name leg only (the
	// camel-case name is a single FTS token). Backoff matches the text leg
	// only through its doc comment.
	seedFileBlocks(t, store, project, "retry.go",
		funcBlock("Retry", 5,
			"",
			"func Retry(fn func() error) error {\n\treturn fn()\n}"),
		funcBlock("RetryWithBackoff", 15,
			"",
			"func RetryWithBackoff(fn func() error) error {\n\tfor {\n\t\treturn fn()\n\t}\n}"),
		funcBlock("Backoff", 25,
			"Backoff computes the retry delay between attempts.",
			"func Backoff(attempt int) time.Duration {\n\treturn time.Second\n}"),
	)

	req := SearchRequest{
		Query:       "Retry",
		Limit:       10,
		Mode:        SearchModeHybrid,
		ProjectID:   project.ID,
		UseCache:    false,
		RRFConstant: 60,
	}

	resp, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.SearchMode != SearchModeHybrid {
		t.Errorf("expected SearchMode hybrid, got %s", resp.SearchMode)
	}

	if resp.NameResults != 2 {
		t.Errorf("expected 2 name results, got %d", resp.NameResults)
	}

	if resp.TextResults != 2 {
		t.Errorf("expected 2 text results, got %d", resp.TextResults)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 fused results, got %d", len(resp.Results))
	}

	// Retry appears at the top of both legs, so RRF puts it first
	if resp.Results[0].Name != "Retry" {
		t.Errorf("expected Retry as top result, got %s", resp.Results[0].Name)
	}

	// Verify results are ranked by fused score
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1].RelevanceScore < resp.Results[i].RelevanceScore {
			t.Error("results not properly ranked by RRF score")
		}
	}

	for i, result := range resp.Results {
		if result.Rank != i+1 {
			t.Errorf("result %d has rank %d, expected %d", i, result.Rank, i+1)
		}
	}
}

// TestSearchDefaultsToHybrid tests that an empty mode selects hybrid search
func TestSearchDefaultsToHybrid(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "main.go", funcBlock("Run", 5, "", ""))

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "Run",
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if resp.SearchMode != SearchModeHybrid {
		t.Errorf("expected default mode hybrid, got %s", resp.SearchMode)
	}
}

// TestSearchWithUnsupportedMode tests error handling for invalid mode
func TestSearchWithUnsupportedMode(t *testing.T) {
	search, _, project := setupTestSearcher(t)
	ctx := context.Background()

	req := SearchRequest{
		Query:     "test",
		Limit:     10,
		Mode:      SearchMode("invalid"),
		ProjectID: project.ID,
	}

	_, err := search.Search(ctx, req)
	if err == nil {
		t.Fatal("expected error for unsupported search mode")
	}

	if err.Error() != "unsupported search mode: invalid" {
		t.Errorf("unexpected error message: %v", err)
	}
}

// TestSearchEmptyQuery tests validation of empty queries
func TestSearchEmptyQuery(t *testing.T) {
	search, _, project := setupTestSearcher(t)
	ctx := context.Background()

	_, err := search.Search(ctx, SearchRequest{
		Query:     "",
		ProjectID: project.ID,
	})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

// TestHybridSearchOneLegFails tests that hybrid search survives a single leg failing.
// A symbol-only query produces no FTS tokens, so the text leg errors while the
// name leg still runs.
func TestHybridSearchOneLegFails(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "main.go", funcBlock("Run", 5, "", ""))

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "!!!",
		Limit:     10,
		Mode:      SearchModeHybrid,
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("expected hybrid search to tolerate one failed leg: %v", err)
	}

	if resp.TotalResults != 0 {
		t.Errorf("expected no results for symbol-only query, got %d", resp.TotalResults)
	}

	if resp.TextResults != 0 {
		t.Errorf("expected zero text results from failed leg, got %d", resp.TextResults)
	}
}

// TestSearchModeTextUnparsableQuery tests that text mode propagates leg errors
func TestSearchModeTextUnparsableQuery(t *testing.T) {
	search, _, project := setupTestSearcher(t)
	ctx := context.Background()

	_, err := search.Search(ctx, SearchRequest{
		Query:     "!!!",
		Limit:     10,
		Mode:      SearchModeText,
		ProjectID: project.ID,
	})
	if err == nil {
		t.Fatal("expected error for query with no searchable tokens")
	}
}

// TestHybridSearchContextCancellation tests context cancellation during hybrid search
func TestHybridSearchContextCancellation(t *testing.T) {
	search, store, project := setupTestSearcher(t)

	seedFileBlocks(t, store, project, "cancel.go", funcBlock("CancelTest", 5, "", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := SearchRequest{
		Query:     "test",
		Limit:     10,
		Mode:      SearchModeHybrid,
		ProjectID: project.ID,
	}

	_, err := search.Search(ctx, req)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got: %v", err)
	}
}

// TestSearchFiltersByKind tests that filters flow through to the search legs
func TestSearchFiltersByKind(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	method := funcBlock("Fetch", 15, "", "func (c *Client) Fetch() error {\n\treturn nil\n}")
	method.Kind = "method"
	method.Receiver = "Client"

	seedFileBlocks(t, store, project, "client.go",
		funcBlock("FetchURL", 5, "", ""),
		method,
	)

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "Fetch",
		Limit:     10,
		Mode:      SearchModeName,
		ProjectID: project.ID,
		Filters:   &storage.SearchFilters{Kinds: []string{"method"}},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 filtered result, got %d", len(resp.Results))
	}

	if resp.Results[0].Name != "Fetch" || resp.Results[0].Receiver != "Client" {
		t.Errorf("expected method Fetch on Client, got %+v", resp.Results[0])
	}
}

// TestSearchFiltersExportedOnly tests the exported-only filter
func TestSearchFiltersExportedOnly(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "fetch.go",
		funcBlock("Fetch", 5, "", ""),
		funcBlock("fetchInternal", 15, "", ""),
	)

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "fetch",
		Limit:     10,
		Mode:      SearchModeName,
		ProjectID: project.ID,
		Filters:   &storage.SearchFilters{ExportedOnly: true},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}

	if !resp.Results[0].Exported || resp.Results[0].Name != "Fetch" {
		t.Errorf("expected only exported Fetch, got %+v", resp.Results[0])
	}
}

// TestSearchProjectIsolation tests that results never cross projects
func TestSearchProjectIsolation(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	other := &storage.Project{
		RootPath:     "/test/other",
		ModuleName:   "example.com/other",
		GoVersion:    "1.25",
		IndexVersion: "1.0.0",
	}
	if err := store.CreateProject(ctx, other); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	seedFileBlocks(t, store, project, "a.go", funcBlock("SharedName", 5, "", ""))
	seedFileBlocks(t, store, other, "b.go", funcBlock("SharedName", 5, "", ""))

	resp, err := search.Search(ctx, SearchRequest{
		Query:     "SharedName",
		Limit:     10,
		Mode:      SearchModeHybrid,
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result from own project, got %d", len(resp.Results))
	}

	if resp.Results[0].File.Path != "a.go" {
		t.Errorf("expected result from a.go, got %s", resp.Results[0].File.Path)
	}
}

// TestFetchResults tests result hydration
func TestFetchResults(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	block := funcBlock("FetchTest", 3, "FetchTest exercises hydration.", "func FetchTest() {\n\treturn\n}")
	file := seedFileBlocks(t, store, project, "fetch.go", block)

	ranked := []rankedResult{
		{blockID: block.ID, score: 0.95, rank: 1},
	}

	results, err := search.fetchResults(ctx, ranked, 10)
	if err != nil {
		t.Fatalf("fetchResults failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	result := results[0]

	if result.BlockID != block.ID {
		t.Errorf("expected BlockID %d, got %d", block.ID, result.BlockID)
	}

	if result.Rank != 1 {
		t.Errorf("expected Rank 1, got %d", result.Rank)
	}

	if result.RelevanceScore != 0.95 {
		t.Errorf("expected RelevanceScore 0.95, got %f", result.RelevanceScore)
	}

	if result.Name != "FetchTest" {
		t.Errorf("expected Name FetchTest, got %s", result.Name)
	}

	if result.Kind != types.KindFunction {
		t.Errorf("expected Kind function, got %s", result.Kind)
	}

	if !result.Exported {
		t.Error("expected Exported true")
	}

	if result.DocComment != "FetchTest exercises hydration." {
		t.Errorf("unexpected DocComment: %s", result.DocComment)
	}

	if result.Content != block.Content {
		t.Errorf("expected Content %q, got %q", block.Content, result.Content)
	}

	if result.File == nil {
		t.Fatal("expected File metadata")
	}

	if result.File.Path != "fetch.go" {
		t.Errorf("expected Path fetch.go, got %s", result.File.Path)
	}

	if result.File.Package != file.PackageName {
		t.Errorf("expected Package %s, got %s", file.PackageName, result.File.Package)
	}

	if result.File.StartLine != 3 || result.File.EndLine != 5 {
		t.Errorf("expected lines 3-5, got %d-%d", result.File.StartLine, result.File.EndLine)
	}
}

// TestFetchResultsWithMissingBlocks tests graceful handling of missing blocks
func TestFetchResultsWithMissingBlocks(t *testing.T) {
	search, _, _ := setupTestSearcher(t)
	ctx := context.Background()

	ranked := []rankedResult{
		{blockID: 99999, score: 0.95, rank: 1},
		{blockID: 88888, score: 0.90, rank: 2},
	}

	results, err := search.fetchResults(ctx, ranked, 10)
	if err != nil {
		t.Fatalf("fetchResults failed: %v", err)
	}

	if len(results) != 0 {
		t.Errorf("expected 0 results for missing blocks, got %d", len(results))
	}
}

// TestFetchResultsLimitRespected tests limit parameter
func TestFetchResultsLimitRespected(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	var ranked []rankedResult
	for i := 0; i < 5; i++ {
		block := funcBlock(fmt.Sprintf("Test%d", i), i*10+1, "", "")
		seedFileBlocks(t, store, project, fmt.Sprintf("test%d.go", i), block)
		ranked = append(ranked, rankedResult{
			blockID: block.ID,
			score:   float64(5-i) * 0.1, // Descending scores
			rank:    i + 1,
		})
	}

	results, err := search.fetchResults(ctx, ranked, 3)
	if err != nil {
		t.Fatalf("fetchResults failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

// TestSearchWithCache tests the cache round trip through Search
func TestSearchWithCache(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "cache.go", funcBlock("CacheTest", 5, "", ""))

	req := SearchRequest{
		Query:     "CacheTest",
		Limit:     10,
		Mode:      SearchModeHybrid,
		ProjectID: project.ID,
		UseCache:  true,
	}

	first, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if first.CacheHit {
		t.Error("expected CacheHit false on first search")
	}

	if len(first.Results) == 0 {
		t.Fatal("expected results so the response is cached")
	}

	second, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("second Search failed: %v", err)
	}

	if !second.CacheHit {
		t.Error("expected CacheHit true on repeated search")
	}

	if len(second.Results) != len(first.Results) {
		t.Errorf("cached response has %d results, expected %d", len(second.Results), len(first.Results))
	}

	if second.Results[0].Name != first.Results[0].Name {
		t.Errorf("cached result %s differs from original %s", second.Results[0].Name, first.Results[0].Name)
	}
}

// TestSearchCacheInvalidatedBetweenSearches tests invalidation forces re-execution
func TestSearchCacheInvalidatedBetweenSearches(t *testing.T) {
	search, store, project := setupTestSearcher(t)
	ctx := context.Background()

	seedFileBlocks(t, store, project, "cache.go", funcBlock("CacheTest", 5, "", ""))

	req := SearchRequest{
		Query:     "CacheTest",
		Limit:     10,
		Mode:      SearchModeHybrid,
		ProjectID: project.ID,
		UseCache:  true,
	}

	if _, err := search.Search(ctx, req); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if err := search.InvalidateCache(ctx, project.ID); err != nil {
		t.Fatalf("InvalidateCache failed: %v", err)
	}

	resp, err := search.Search(ctx, req)
	if err != nil {
		t.Fatalf("Search after invalidation failed: %v", err)
	}

	if resp.CacheHit {
		t.Error("expected CacheHit false after invalidation")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
