package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// extractFileTool returns the tool definition for extract_file
func extractFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "extract_file",
		Description: "Extract top-level declaration blocks from a Go source file using line-oriented scanning. Fast and import-free, but heuristic: unbalanced braces inside raw strings or malformed code can skew block boundaries.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Go source file to extract",
				},
				"attach_comments": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, attach contiguous leading comments to the following block",
					"default":     true,
				},
				"flush_trailing": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, emit trailing unterminated content as a final block instead of dropping it",
					"default":     true,
				},
			},
			Required: []string{"path"},
		},
	}
}

// splitFileTool returns the tool definition for split_file
func splitFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "split_file",
		Description: "Split a Go source file into multiple files, grouping declarations by the chosen strategy. Each output file repeats the original package clause and imports.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the Go source file to split",
				},
				"output_dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory to write split files into (created if missing)",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Grouping strategy: one file per declaration (decl), per declaration kind (kind), or per receiver type (receiver)",
					"enum":        []string{"decl", "kind", "receiver"},
					"default":     "receiver",
				},
				"dry_run": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, compute the split plan without writing any files",
					"default":     false,
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, overwrite existing files in the output directory",
					"default":     false,
				},
			},
			Required: []string{"path", "output_dir"},
		},
	}
}

// indexPathTool returns the tool definition for index_path
func indexPathTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_path",
		Description: "Index all Go files under a directory for block search. Extracts declaration blocks and stores them with full-text indexing. Incremental: unchanged files are skipped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project root (must contain go.mod or .go files)",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index all files ignoring file hashes (full rebuild)",
					"default":     false,
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index *_test.go files",
					"default":     true,
				},
				"include_vendor": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index vendor/ directory",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchBlocksTool returns the tool definition for search_blocks
func searchBlocksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_blocks",
		Description: "Search indexed declaration blocks by name and content. Hybrid mode fuses identifier matching with full-text search over doc comments and bodies.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed Go project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (identifier name or free text)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (name + full-text fused), name (identifier matching only), or text (full-text only)",
					"enum":        []string{"hybrid", "name", "text"},
					"default":     "hybrid",
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"kinds": map[string]interface{}{
							"type":        "array",
							"description": "Filter by block kind",
							"items": map[string]interface{}{
								"type": "string",
								"enum": []string{"function", "method", "struct", "interface", "alias", "type"},
							},
						},
						"exported_only": map[string]interface{}{
							"type":        "boolean",
							"description": "If true, return only exported declarations",
						},
						"receiver": map[string]interface{}{
							"type":        "string",
							"description": "Restrict methods to this receiver type",
						},
						"packages": map[string]interface{}{
							"type":        "array",
							"description": "Filter by package names",
							"items": map[string]interface{}{
								"type": "string",
							},
						},
						"file_pattern": map[string]interface{}{
							"type":        "string",
							"description": "Glob pattern for file paths (e.g., 'internal/*')",
						},
					},
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a Go project: file and block counts, per-kind breakdown, database size, and health checks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project",
				},
			},
			Required: []string{"path"},
		},
	}
}
