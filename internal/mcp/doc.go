// Package mcp implements the Model Context Protocol (MCP) server for goblocks.
//
// The MCP server exposes five tools to AI coding assistants (Claude Code, Codex CLI):
//   - extract_file: Extract top-level declaration blocks from one Go file
//   - split_file: Split a Go file into multiple files by grouping strategy
//   - index_path: Index a Go project for block search
//   - search_blocks: Search indexed declaration blocks by name and content
//   - get_status: Check indexing status and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	goblocks serve
//
// It then listens on stdin for MCP protocol messages and writes responses to stdout.
//
// # Tool: extract_file
//
// Extract declaration blocks from a single Go source file:
//
//	Request:
//	{
//	  "name": "extract_file",
//	  "arguments": {
//	    "path": "/path/to/project/handlers.go",
//	    "attach_comments": true,
//	    "flush_trailing": true
//	  }
//	}
//
//	Response:
//	{
//	  "file": "/path/to/project/handlers.go",
//	  "package": "handlers",
//	  "header_lines": 12,
//	  "block_count": 9,
//	  "dropped_lines": 0,
//	  "heuristic": true,
//	  "blocks": [
//	    {
//	      "name": "ServeHTTP",
//	      "kind": "method",
//	      "receiver": "Router",
//	      "exported": true,
//	      "start_line": 14,
//	      "end_line": 31,
//	      "line_count": 18,
//	      "terminated": true
//	    }
//	  ]
//	}
//
// The heuristic flag is always true: boundaries come from line scanning
// and brace counting, not a parse tree, so pathological input (unbalanced
// braces inside raw string literals) can skew them.
//
// # Tool: split_file
//
// Split a Go file into multiple files:
//
//	Request:
//	{
//	  "name": "split_file",
//	  "arguments": {
//	    "path": "/path/to/project/models.go",
//	    "output_dir": "/path/to/project/models",
//	    "strategy": "receiver",
//	    "dry_run": false,
//	    "force": false
//	  }
//	}
//
//	Response:
//	{
//	  "source": "/path/to/project/models.go",
//	  "strategy": "receiver",
//	  "dry_run": false,
//	  "plan": [
//	    {"file": "user.go", "block_count": 5, "blocks": ["User", "NewUser", "Validate", ...]},
//	    {"file": "funcs.go", "block_count": 2, "blocks": ["ParseRole", "DefaultQuota"]}
//	  ],
//	  "files_written": 2,
//	  "paths": ["/path/to/project/models/user.go", "/path/to/project/models/funcs.go"],
//	  "bytes_written": 4821
//	}
//
// # Tool: index_path
//
// Index a Go project to make its blocks searchable:
//
//	Request:
//	{
//	  "name": "index_path",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "force_reindex": false,
//	    "include_tests": true,
//	    "include_vendor": false
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_scanned": 247,
//	  "files_indexed": 158,
//	  "files_skipped": 89,
//	  "files_failed": 0,
//	  "files_removed": 2,
//	  "blocks_stored": 3211,
//	  "lines_dropped": 17,
//	  "duration_ms": 1843
//	}
//
// Indexing is incremental: files whose content hash is unchanged are
// skipped unless force_reindex is set.
//
// # Tool: search_blocks
//
// Search indexed blocks by identifier name, doc comments, and body text:
//
//	Request:
//	{
//	  "name": "search_blocks",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "query": "retry backoff",
//	    "limit": 10,
//	    "search_mode": "hybrid",
//	    "filters": {
//	      "kinds": ["function", "method"],
//	      "exported_only": true
//	    }
//	  }
//	}
//
//	Response:
//	{
//	  "query": "retry backoff",
//	  "mode": "hybrid",
//	  "total_results": 3,
//	  "duration_ms": 4,
//	  "cache_hit": false,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "score": 0.0325,
//	      "name": "RetryWithBackoff",
//	      "kind": "function",
//	      "receiver": "",
//	      "exported": true,
//	      "file": "internal/client/retry.go",
//	      "package": "client",
//	      "start_line": 24,
//	      "end_line": 51,
//	      "doc_comment": "// RetryWithBackoff retries fn with exponential backoff.",
//	      "content": "func RetryWithBackoff(...) error { ... }"
//	    }
//	  ]
//	}
//
// # Tool: get_status
//
// Check indexing status:
//
//	Request:
//	{
//	  "name": "get_status",
//	  "arguments": {
//	    "path": "/path/to/project"
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "project": {
//	    "path": "/path/to/project",
//	    "module_name": "github.com/user/project",
//	    "go_version": "1.25",
//	    "last_indexed_at": "2025-11-02T14:31:07-05:00"
//	  },
//	  "statistics": {
//	    "files_count": 247,
//	    "blocks_count": 3211,
//	    "kind_counts": {"function": 1205, "method": 1418, "struct": 402, ...},
//	    "unterminated_count": 0,
//	    "dropped_lines": 17,
//	    "index_size_mb": "4.20"
//	  },
//	  "health": {
//	    "database_accessible": true,
//	    "fts_index_built": true
//	  },
//	  "storage": {
//	    "driver": "sqlite3",
//	    "build_mode": "cgo"
//	  }
//	}
//
// # MCP Client Configuration
//
// Configure in Claude Code's MCP settings:
//
//	{
//	  "mcpServers": {
//	    "goblocks": {
//	      "command": "/usr/local/bin/goblocks",
//	      "args": ["serve"]
//	    }
//	  }
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "invalid path",
//	    "data": {
//	      "param": "path",
//	      "reason": "path does not exist"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Path does not contain a Go project
//   - -32002: Indexing in progress
//   - -32003: Project not indexed
//   - -32004: Empty query
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol):
//
//	log.SetOutput(os.Stderr)
//	log.Printf("MCP server started")
package mcp
