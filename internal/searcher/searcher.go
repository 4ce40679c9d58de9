package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/goblocks/internal/storage"
	"github.com/dshills/goblocks/pkg/types"
)

// SearchMode defines how search is performed
type SearchMode string

const (
	SearchModeHybrid SearchMode = "hybrid" // Name + BM25 with RRF
	SearchModeName   SearchMode = "name"   // Declaration-name matching only
	SearchModeText   SearchMode = "text"   // BM25 full-text search only
)

const (
	// defaultCacheSize limits the query cache to 128 entries
	defaultCacheSize = 128
	// defaultCacheTTL is how long a cached response stays valid
	defaultCacheTTL = 5 * time.Minute
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query       string
	Limit       int
	Mode        SearchMode
	Filters     *storage.SearchFilters
	ProjectID   int64
	UseCache    bool // Whether to use query cache
	CacheTTL    time.Duration
	RRFConstant float64 // k value for Reciprocal Rank Fusion (default 60)
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []types.SearchResult
	TotalResults int
	SearchMode   SearchMode
	Duration     time.Duration
	CacheHit     bool
	NameResults  int
	TextResults  int
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher coordinates search operations across name and full-text search
type Searcher struct {
	storage  storage.Storage
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
}

// NewSearcher creates a new Searcher instance with the default cache settings
func NewSearcher(store storage.Storage) *Searcher {
	return NewSearcherWithCache(store, defaultCacheSize, defaultCacheTTL)
}

// NewSearcherWithCache creates a Searcher whose query cache holds up to size
// entries, each valid for ttl unless the request overrides it. Non-positive
// values fall back to the defaults.
func NewSearcherWithCache(store storage.Storage, size int, ttl time.Duration) *Searcher {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage:  store,
		cache:    cache,
		cacheTTL: ttl,
	}
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	// Validate request
	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	// Check cache if enabled
	if req.UseCache {
		cached, err := s.checkCache(ctx, req)
		if err == nil && cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	// Perform search based on mode
	var response *SearchResponse
	var err error

	switch req.Mode {
	case SearchModeHybrid:
		response, err = s.hybridSearch(ctx, req)
	case SearchModeName:
		response, err = s.nameSearch(ctx, req)
	case SearchModeText:
		response, err = s.textSearch(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode)
	}

	if err != nil {
		return nil, err
	}

	response.Duration = time.Since(startTime)
	response.SearchMode = req.Mode

	// Store in cache if enabled
	if req.UseCache && len(response.Results) > 0 {
		_ = s.storeInCache(ctx, req, response)
	}

	return response, nil
}

// searchResult holds results from concurrent search operations
type searchResult struct {
	nameResults []storage.NameResult
	textResults []storage.TextResult
	err         error
}

// runNameSearch executes name search in a goroutine
func (s *Searcher) runNameSearch(ctx context.Context, req SearchRequest, resultChan chan<- searchResult) {
	var res searchResult
	res.nameResults, res.err = s.storage.SearchBlocksByName(ctx, req.ProjectID, req.Query, req.Limit*2, req.Filters)
	select {
	case resultChan <- res:
	case <-ctx.Done():
	}
}

// runTextSearch executes text search in a goroutine
func (s *Searcher) runTextSearch(ctx context.Context, req SearchRequest, resultChan chan<- searchResult) {
	var res searchResult
	res.textResults, res.err = s.storage.SearchBlocksText(ctx, req.ProjectID, req.Query, req.Limit*2, req.Filters)
	select {
	case resultChan <- res:
	case <-ctx.Done():
	}
}

// hybridSearch combines name and BM25 search using Reciprocal Rank Fusion
func (s *Searcher) hybridSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	nameChan := make(chan searchResult, 1)
	textChan := make(chan searchResult, 1)

	go s.runNameSearch(ctx, req, nameChan)
	go s.runTextSearch(ctx, req, textChan)

	// Wait for both searches
	var nameRes, textRes searchResult
	var nameDone, textDone bool
	for !nameDone || !textDone {
		select {
		case nameRes = <-nameChan:
			nameDone = true
		case textRes = <-textChan:
			textDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Check for errors (allow one leg to fail)
	if nameRes.err != nil && textRes.err != nil {
		return nil, fmt.Errorf("both searches failed: name=%w, text=%v", nameRes.err, textRes.err)
	}

	// Apply RRF and fetch results
	rrf := s.applyRRF(nameRes.nameResults, textRes.textResults, req.RRFConstant)
	results, err := s.fetchResults(ctx, rrf, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		NameResults:  len(nameRes.nameResults),
		TextResults:  len(textRes.textResults),
	}, nil
}

// nameSearch performs only declaration-name matching
func (s *Searcher) nameSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	nameResults, err := s.storage.SearchBlocksByName(ctx, req.ProjectID, req.Query, req.Limit, req.Filters)
	if err != nil {
		return nil, err
	}

	// Convert to unified format
	rankedResults := make([]rankedResult, len(nameResults))
	for i, nr := range nameResults {
		rankedResults[i] = rankedResult{
			blockID: nr.BlockID,
			score:   nr.NameScore,
			nameHit: true,
			rank:    i + 1,
		}
	}

	results, err := s.fetchResults(ctx, rankedResults, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		NameResults:  len(nameResults),
	}, nil
}

// textSearch performs only BM25 full-text search
func (s *Searcher) textSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	textResults, err := s.storage.SearchBlocksText(ctx, req.ProjectID, req.Query, req.Limit, req.Filters)
	if err != nil {
		return nil, err
	}

	// Convert to unified format
	rankedResults := make([]rankedResult, len(textResults))
	for i, tr := range textResults {
		rankedResults[i] = rankedResult{
			blockID: tr.BlockID,
			score:   tr.BM25Score,
			rank:    i + 1,
		}
	}

	results, err := s.fetchResults(ctx, rankedResults, req.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		TextResults:  len(textResults),
	}, nil
}

// rankedResult represents a block with its relevance score and rank
type rankedResult struct {
	blockID int64
	score   float64
	nameHit bool
	rank    int
}

// applyRRF applies Reciprocal Rank Fusion to combine name and text results.
// RRF formula: RRF(d) = Σ 1/(k + rank(d))
func (s *Searcher) applyRRF(nameResults []storage.NameResult, textResults []storage.TextResult, k float64) []rankedResult {
	if k == 0 {
		k = 60 // Default RRF constant
	}

	// Combine scores by block ID
	scores := make(map[int64]float64)
	nameHits := make(map[int64]bool)

	// Add name results
	for rank, nr := range nameResults {
		scores[nr.BlockID] += 1.0 / (k + float64(rank+1))
		nameHits[nr.BlockID] = true
	}

	// Add text results
	for rank, tr := range textResults {
		scores[tr.BlockID] += 1.0 / (k + float64(rank+1))
	}

	// Convert to ranked results
	results := make([]rankedResult, 0, len(scores))
	for blockID, score := range scores {
		results = append(results, rankedResult{
			blockID: blockID,
			score:   score,
			nameHit: nameHits[blockID],
		})
	}

	// Sort by score (descending), name hits winning ties
	sortRankedResults(results)

	// Assign ranks
	for i := range results {
		results[i].rank = i + 1
	}

	return results
}

// fetchResults retrieves full block data and metadata for ranked results
func (s *Searcher) fetchResults(ctx context.Context, ranked []rankedResult, limit int) ([]types.SearchResult, error) {
	if limit > len(ranked) {
		limit = len(ranked)
	}

	results := make([]types.SearchResult, 0, limit)

	for i := 0; i < limit; i++ {
		rr := ranked[i]

		block, err := s.storage.GetBlock(ctx, rr.blockID)
		if err != nil {
			continue // Skip blocks that can't be loaded
		}

		file, err := s.storage.GetFileByID(ctx, block.FileID)
		if err != nil {
			continue
		}

		results = append(results, types.SearchResult{
			BlockID:        rr.blockID,
			Rank:           rr.rank,
			RelevanceScore: rr.score,
			Name:           block.Name,
			Kind:           types.BlockKind(block.Kind),
			Receiver:       block.Receiver,
			Exported:       block.Exported,
			DocComment:     block.DocComment,
			Content:        block.Content,
			File: &types.FileInfo{
				Path:      file.FilePath,
				Package:   file.PackageName,
				StartLine: block.StartLine,
				EndLine:   block.EndLine,
			},
		})
	}

	return results, nil
}

// validateRequest ensures search request is valid
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if req.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}

	if req.Limit <= 0 {
		req.Limit = 10 // Default limit
	}

	if req.Limit > 100 {
		req.Limit = 100 // Max limit
	}

	if req.Mode == "" {
		req.Mode = SearchModeHybrid // Default mode
	}

	if req.RRFConstant == 0 {
		req.RRFConstant = 60 // Default k value
	}

	if req.CacheTTL == 0 {
		if s.cacheTTL > 0 {
			req.CacheTTL = s.cacheTTL
		} else {
			req.CacheTTL = defaultCacheTTL
		}
	}

	return nil
}

// checkCache looks up cached search results
func (s *Searcher) checkCache(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)

	if !found {
		s.cacheMu.RUnlock()
		return nil, fmt.Errorf("cache miss")
	}

	// Check expiration while holding read lock to avoid race condition
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		// Remove expired entry - need write lock
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, fmt.Errorf("cache expired")
	}

	// Entry is valid - return a deep copy while still holding read lock
	// to ensure entry isn't modified during copy
	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response, nil
}

// storeInCache saves search results to cache
func (s *Searcher) storeInCache(ctx context.Context, req SearchRequest, response *SearchResponse) error {
	hash := computeQueryHash(req)

	expiresAt := time.Now().Add(req.CacheTTL)

	// Deep copy prevents external modifications reaching the cache
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: expiresAt,
	}

	s.cacheMu.Lock()
	s.cache.Add(hash, entry)
	s.cacheMu.Unlock()

	return nil
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := &SearchResponse{
		TotalResults: src.TotalResults,
		SearchMode:   src.SearchMode,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		NameResults:  src.NameResults,
		TextResults:  src.TextResults,
		Results:      make([]types.SearchResult, len(src.Results)),
	}

	for i, result := range src.Results {
		dst.Results[i] = types.SearchResult{
			BlockID:        result.BlockID,
			Rank:           result.Rank,
			RelevanceScore: result.RelevanceScore,
			Name:           result.Name,
			Kind:           result.Kind,
			Receiver:       result.Receiver,
			Exported:       result.Exported,
			DocComment:     result.DocComment,
			Content:        result.Content,
		}

		// FileInfo contains only primitive types, so shallow copy is sufficient.
		// If FileInfo is modified to include slice/map fields in the future, this
		// must be updated to deep copy those fields.
		if result.File != nil {
			fileCopy := *result.File
			dst.Results[i].File = &fileCopy
		}
	}

	return dst
}

// computeQueryHash computes a unique hash for a search request
func computeQueryHash(req SearchRequest) [32]byte {
	// Build deterministic string representation
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(string(req.Mode))
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.ProjectID))

	// Add filters with stable serialization
	if req.Filters != nil {
		data.WriteString("|filters:")
		data.WriteString(strings.Join(req.Filters.Kinds, ","))
		data.WriteString("|")
		data.WriteString(strings.Join(req.Filters.Roles, ","))
		data.WriteString("|")
		data.WriteString(strings.Join(req.Filters.Packages, ","))
		data.WriteString("|")
		data.WriteString(req.Filters.FilePattern)
		data.WriteString("|")
		data.WriteString(req.Filters.Receiver)
		data.WriteString("|")
		data.WriteString(fmt.Sprintf("%t", req.Filters.ExportedOnly))
	}

	return sha256.Sum256([]byte(data.String()))
}

// sortRankedResults sorts results by score in descending order.
// Ties go to blocks matched by name, then lower block ID for stable output.
func sortRankedResults(results []rankedResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].nameHit != results[j].nameHit {
			return results[i].nameHit
		}
		return results[i].blockID < results[j].blockID
	})
}

// InvalidateCache removes cached queries for a specific project
func (s *Searcher) InvalidateCache(ctx context.Context, projectID int64) error {
	// Entries aren't indexed by project ID and the LRU cache doesn't support
	// filtering, so we purge the entire cache. Acceptable because invalidation
	// happens on reindexing, which is rare relative to queries.
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
	return nil
}

// EvictLRU removes least-used cache entries when cache size exceeds limit
func (s *Searcher) EvictLRU(ctx context.Context, maxEntries int) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	currentLen := s.cache.Len()
	if currentLen <= maxEntries {
		return nil
	}

	// NOTE: hashicorp/golang-lru doesn't support resizing an existing cache,
	// so downsizing clears it. The cache rebuilds with most-recently-used
	// entries on subsequent searches.
	newCache, err := lru.New[[32]byte, *cacheEntry](maxEntries)
	if err != nil {
		return fmt.Errorf("failed to create new cache: %w", err)
	}

	s.cache = newCache

	return nil
}
