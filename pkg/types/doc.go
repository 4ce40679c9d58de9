// Package types provides shared type definitions for goblocks.
//
// This package defines domain types used across multiple components of
// goblocks, including blocks, headers, extraction results, and search
// results.
//
// # Core Types
//
// Block represents one top-level declaration (function, method, type, ...)
// extracted from source text by the line-oriented heuristic scanner:
//
//	block := &types.Block{
//	    Name:     "ExtractFile",
//	    Kind:     types.KindFunction,
//	    Lines:    []string{"func ExtractFile(path string) error {", "\treturn nil", "}"},
//	    Exported: true,
//	}
//
// Header represents the leading non-declaration region of a file (package
// clause, imports, leading comments):
//
//	header := types.Header{Lines: []string{"package linq", "", "import \"sort\""}}
//	name := header.PackageName() // "linq"
//
// ExtractResult bundles the header and the ordered blocks produced from one
// file, plus accounting for lines the scanner dropped.
//
// # Naming-Convention Roles
//
// Block types include flags derived from Go naming conventions:
//
//	block.IsConstructor // "New*" or "Must*" function
//	block.IsTest        // "Test*" function
//	block.IsMain        // func main
//
// These flags drive split grouping (constructors land next to their type)
// and search filters.
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := block.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Search Results
//
// SearchResult combines block metadata with relevance scoring:
//
//	result := &types.SearchResult{
//	    BlockID:        123,
//	    Rank:           1,
//	    RelevanceScore: 0.92,
//	    Name:           "ExtractFile",
//	    Kind:           types.KindFunction,
//	}
//
// Relevance scores are normalized to [0, 1] range, with higher values
// indicating better matches.
package types
