package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/goblocks/internal/extractor"
	"github.com/dshills/goblocks/internal/indexer"
	"github.com/dshills/goblocks/internal/searcher"
	"github.com/dshills/goblocks/internal/splitter"
	"github.com/dshills/goblocks/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain a Go project
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleExtractFile handles the extract_file tool invocation
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateGoFile(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Parse optional parameters
	attachComments := getBoolDefault(args, "attach_comments", true)
	flushTrailing := getBoolDefault(args, "flush_trailing", true)

	ext := extractor.NewWithOptions(extractor.Options{
		AttachComments: attachComments,
		FlushTrailing:  flushTrailing,
	})

	result, err := ext.ExtractFile(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	blocks := make([]map[string]interface{}, 0, len(result.Blocks))
	for _, b := range result.Blocks {
		blocks = append(blocks, map[string]interface{}{
			"name":       b.Name,
			"kind":       string(b.Kind),
			"receiver":   b.Receiver,
			"exported":   b.Exported,
			"start_line": b.StartLine,
			"end_line":   b.EndLine,
			"line_count": b.LineCount(),
			"terminated": b.Terminated,
		})
	}

	// Format response. The heuristic flag reminds callers that block
	// boundaries come from line scanning, not a parse tree.
	response := map[string]interface{}{
		"file":          result.FilePath,
		"package":       result.PackageName,
		"header_lines":  result.Header.LineCount(),
		"block_count":   result.BlockCount(),
		"dropped_lines": result.DroppedLines,
		"heuristic":     true,
		"blocks":        blocks,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSplitFile handles the split_file tool invocation
func (s *Server) handleSplitFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	outputDir, ok := args["output_dir"].(string)
	if !ok || outputDir == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "output_dir parameter is required", map[string]interface{}{
			"param":  "output_dir",
			"reason": "missing or empty",
		})
	}

	if err := validateGoFile(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Parse optional parameters
	strategy := getStringDefault(args, "strategy", string(splitter.StrategyReceiver))
	dryRun := getBoolDefault(args, "dry_run", false)
	force := getBoolDefault(args, "force", false)

	sp, err := splitter.NewWithStrategy(splitter.Strategy(strategy))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid strategy", map[string]interface{}{
			"param":   "strategy",
			"value":   strategy,
			"allowed": []string{"decl", "kind", "receiver"},
		})
	}

	result, err := s.extractor.ExtractFile(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	plan, err := sp.Plan(result)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "split planning failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	writeResult, err := sp.Write(plan, splitter.WriteOptions{
		OutputDir: outputDir,
		Force:     force,
		DryRun:    dryRun,
	})
	if err != nil {
		data := map[string]interface{}{
			"error": err.Error(),
		}
		if errors.Is(err, splitter.ErrOutputExists) {
			data["suggestion"] = "pass force: true to overwrite existing files"
		}
		return nil, newMCPError(ErrorCodeInternalError, "split write failed", data)
	}

	planned := make([]map[string]interface{}, 0, len(plan.Files))
	for _, pf := range plan.Files {
		names := make([]string, 0, len(pf.Blocks))
		for _, b := range pf.Blocks {
			names = append(names, b.Name)
		}
		planned = append(planned, map[string]interface{}{
			"file":        pf.Name,
			"block_count": len(pf.Blocks),
			"blocks":      names,
		})
	}

	filesWritten := len(writeResult.Paths)
	if writeResult.DryRun {
		filesWritten = 0
	}

	// Format response
	response := map[string]interface{}{
		"source":        plan.SourcePath,
		"strategy":      string(plan.Strategy),
		"dry_run":       writeResult.DryRun,
		"plan":          planned,
		"files_written": filesWritten,
		"paths":         writeResult.Paths,
		"bytes_written": writeResult.BytesWritten,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexPath handles the index_path tool invocation
func (s *Server) handleIndexPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoGoFiles) {
			code = ErrorCodeProjectNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Parse optional parameters
	forceReindex, _ := args["force_reindex"].(bool)
	includeTests := getBoolDefault(args, "include_tests", true)
	includeVendor := getBoolDefault(args, "include_vendor", false)

	// Create indexer config
	config := &indexer.Config{
		IncludeTests:  includeTests,
		IncludeVendor: includeVendor,
		ForceReindex:  forceReindex,
	}

	// Run indexing
	stats, err := s.indexer.IndexProject(ctx, path, config)
	if err != nil {
		if errors.Is(err, indexer.ErrIndexingInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cached search results are stale after a successful index run
	if project, perr := s.storage.GetProject(ctx, filepath.Clean(path)); perr == nil {
		_ = s.searcher.InvalidateCache(ctx, project.ID)
	}

	// Format response
	response := map[string]interface{}{
		"indexed":       true,
		"files_scanned": stats.FilesScanned,
		"files_indexed": stats.FilesIndexed,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"files_removed": stats.FilesRemoved,
		"blocks_stored": stats.BlocksStored,
		"lines_dropped": stats.LinesDropped,
		"duration_ms":   stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchBlocks handles the search_blocks tool invocation
func (s *Server) handleSearchBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Parse optional parameters
	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	searchMode := getStringDefault(args, "search_mode", "hybrid")
	if searchMode != "hybrid" && searchMode != "name" && searchMode != "text" {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   searchMode,
			"allowed": []string{"hybrid", "name", "text"},
		})
	}

	// Parse filters
	var filters *storage.SearchFilters
	if raw, ok := args["filters"].(map[string]interface{}); ok {
		filters = &storage.SearchFilters{
			Kinds:        getStringSlice(raw, "kinds"),
			Packages:     getStringSlice(raw, "packages"),
			FilePattern:  getStringDefault(raw, "file_pattern", ""),
			Receiver:     getStringDefault(raw, "receiver", ""),
			ExportedOnly: getBoolDefault(raw, "exported_only", false),
		}
	}

	// Look up project. Indexing stores the cleaned absolute root path.
	project, err := s.storage.GetProject(ctx, filepath.Clean(path))
	if err == storage.ErrNotFound {
		return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path":       path,
			"suggestion": "Use index_path tool to index this project first.",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to look up project", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Run search
	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		Mode:      searcher.SearchMode(searchMode),
		Filters:   filters,
		ProjectID: project.ID,
		UseCache:  true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"rank":        r.Rank,
			"score":       r.RelevanceScore,
			"name":        r.Name,
			"kind":        string(r.Kind),
			"receiver":    r.Receiver,
			"exported":    r.Exported,
			"file":        r.File.Path,
			"package":     r.File.Package,
			"start_line":  r.File.StartLine,
			"end_line":    r.File.EndLine,
			"doc_comment": r.DocComment,
			"content":     r.Content,
		})
	}

	// Format response
	response := map[string]interface{}{
		"query":         query,
		"mode":          string(resp.SearchMode),
		"total_results": resp.TotalResults,
		"duration_ms":   resp.Duration.Milliseconds(),
		"cache_hit":     resp.CacheHit,
		"results":       results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Try to get project
	project, err := s.storage.GetProject(ctx, filepath.Clean(path))
	if err == storage.ErrNotFound {
		// Project not indexed
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Project not indexed. Use index_path tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Get detailed status
	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Format response
	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"module_name":     project.ModuleName,
			"go_version":      project.GoVersion,
			"last_indexed_at": project.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"files_count":        status.FilesCount,
			"blocks_count":       status.BlocksCount,
			"kind_counts":        status.KindCounts,
			"unterminated_count": status.UnterminatedCount,
			"dropped_lines":      status.TotalDroppedLines,
			"index_size_mb":      fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_index_built":     status.Health.FTSIndexBuilt,
		},
		"storage": map[string]interface{}{
			"driver":     storage.DriverName,
			"build_mode": storage.BuildMode,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path is an accessible directory containing Go files
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it's a directory
	if !info.IsDir() {
		return ErrNotDirectory
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	// Check for Go files
	hasGoFiles := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(p, ".go") {
			hasGoFiles = true
			return filepath.SkipAll
		}
		return nil
	})

	if !hasGoFiles {
		return ErrNoGoFiles
	}

	return nil
}

// validateGoFile checks if a path is a readable Go source file
func validateGoFile(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if info.IsDir() {
		return ErrNotFile
	}

	if !strings.HasSuffix(path, ".go") {
		return ErrNotGoFile
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, tolerating the
// []interface{} shape JSON decoding produces
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNotFile         = errors.New("path is a directory, not a file")
	ErrNotGoFile       = errors.New("path is not a Go source file")
	ErrNoGoFiles       = errors.New("directory does not contain Go files")
)
