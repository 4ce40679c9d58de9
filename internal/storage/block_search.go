package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// searchBlocksByName ranks blocks whose declaration name matches the query.
// Exact matches score 1.0, prefix matches 0.75, bare substring matches 0.5;
// ties resolve alphabetically.
func searchBlocksByName(ctx context.Context, db *sql.DB, projectID int64, query string, limit int, filters *SearchFilters) ([]NameResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		return []NameResult{}, nil
	}

	escaped := escapeLike(trimmed)
	sqlQuery := `
		SELECT
			b.id as block_id,
			CASE
				WHEN b.name = ? THEN 1.0
				WHEN b.name LIKE ? ESCAPE '\' THEN 0.75
				ELSE 0.5
			END as score
		FROM blocks b
		INNER JOIN files f ON b.file_id = f.id
		WHERE f.project_id = ?
		AND b.name LIKE ? ESCAPE '\'
	`
	args := []interface{}{trimmed, escaped + "%", projectID, "%" + escaped + "%"}

	// Apply filters in SQL WHERE clause
	sqlQuery, args = applyBlockFilters(sqlQuery, args, filters)

	// Order by score (descending) with stable name tiebreak and apply LIMIT in SQL
	sqlQuery += " ORDER BY score DESC, b.name, b.id LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute name search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]NameResult, 0, limit)
	for rows.Next() {
		var result NameResult
		if err := rows.Scan(&result.BlockID, &result.NameScore); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// searchBlocksText performs BM25 full-text search using FTS5
func searchBlocksText(ctx context.Context, db *sql.DB, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	// Sanitize query for FTS5
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		return []TextResult{}, nil
	}

	// Build query with filters
	sqlQuery := `
		SELECT
			b.id as block_id,
			bm25(blocks_fts) as score
		FROM blocks_fts
		INNER JOIN blocks b ON blocks_fts.rowid = b.id
		INNER JOIN files f ON b.file_id = f.id
		WHERE blocks_fts MATCH ?
		AND f.project_id = ?
	`
	args := []interface{}{sanitized, projectID}

	// Apply filters
	sqlQuery, args = applyBlockFilters(sqlQuery, args, filters)

	// Order by BM25 score (lower is better) and limit
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTextResults(rows)
}

// applyBlockFilters adds WHERE clause filters shared by both search legs.
// Both legs alias blocks as b and files as f.
func applyBlockFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if len(filters.Kinds) > 0 && filters.Kinds[0] != "" {
		query += " AND b.kind IN ("
		for i, kind := range filters.Kinds {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, kind)
		}
		query += ")"
	}

	if len(filters.Packages) > 0 {
		query += " AND f.package_name IN ("
		for i, pkg := range filters.Packages {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, pkg)
		}
		query += ")"
	}

	if filters.FilePattern != "" {
		query += " AND f.file_path GLOB ?"
		args = append(args, filters.FilePattern)
	}

	if filters.Receiver != "" {
		query += " AND b.receiver = ?"
		args = append(args, filters.Receiver)
	}

	if filters.ExportedOnly {
		query += " AND b.exported = 1"
	}

	query = applyRoleFilters(query, filters)
	return query, args
}

// applyRoleFilters adds naming-convention role filters to query
func applyRoleFilters(query string, filters *SearchFilters) string {
	if filters == nil || len(filters.Roles) == 0 {
		return query
	}

	roleConditions := buildRoleConditions(filters.Roles)
	if len(roleConditions) == 0 {
		return query
	}

	query += " AND (" + roleConditions[0]
	for i := 1; i < len(roleConditions); i++ {
		query += " OR " + roleConditions[i]
	}
	query += ")"
	return query
}

// buildRoleConditions creates SQL conditions for role flags
func buildRoleConditions(roles []string) []string {
	conditions := make([]string, 0, len(roles))
	for _, role := range roles {
		switch role {
		case "constructor":
			conditions = append(conditions, "b.is_constructor = 1")
		case "test":
			conditions = append(conditions, "b.is_test = 1")
		case "benchmark":
			conditions = append(conditions, "b.is_benchmark = 1")
		case "example":
			conditions = append(conditions, "b.is_example = 1")
		case "fuzz":
			conditions = append(conditions, "b.is_fuzz = 1")
		case "main":
			conditions = append(conditions, "b.is_main = 1")
		case "init":
			conditions = append(conditions, "b.is_init = 1")
		}
	}
	return conditions
}

// collectTextResults processes text search results and normalizes scores
func collectTextResults(rows *sql.Rows) ([]TextResult, error) {
	results := make([]TextResult, 0)

	for rows.Next() {
		var result TextResult
		if err := rows.Scan(&result.BlockID, &result.BM25Score); err != nil {
			return nil, err
		}

		// Convert BM25 score (negative, lower is better) to positive normalized score
		// BM25 scores are typically in range [-50, 0]
		normalizedScore := 1.0 / (1.0 + math.Abs(result.BM25Score)/50.0)
		result.BM25Score = normalizedScore

		results = append(results, result)
	}

	return results, rows.Err()
}

// sanitizeFTSQuery rewrites a raw query as quoted FTS5 terms so user input
// cannot inject MATCH syntax (boolean operators, column filters, grouping).
// Terms joined by spaces match with implicit AND.
func sanitizeFTSQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + field + `"`
	}
	return strings.Join(quoted, " ")
}

// escapeLike escapes LIKE pattern metacharacters in a user query
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
