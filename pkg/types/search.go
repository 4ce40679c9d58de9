package types

// SearchResult represents a single search result with relevance information
type SearchResult struct {
	// Identification
	BlockID int64
	Rank    int // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 // Combined score from name + full-text legs after RRF

	// Block metadata
	Name     string
	Kind     BlockKind
	Receiver string
	Exported bool

	// Content
	DocComment string
	Content    string

	// Location
	File *FileInfo
}

// FileInfo contains file metadata for a search result
type FileInfo struct {
	Path      string // Relative to project root
	Package   string
	StartLine int
	EndLine   int
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.BlockID == 0 {
		return ErrInvalidBlockID
	}

	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if sr.File == nil {
		return ErrMissingFileInfo
	}

	if sr.Content == "" {
		return ErrEmptyContent
	}

	return nil
}
