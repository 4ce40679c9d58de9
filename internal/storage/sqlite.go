package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Project operations

// createProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, module_name, go_version, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.RootPath, project.ModuleName, project.GoVersion,
		project.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return s.createProjectWithQuerier(ctx, s.querier(), project)
}

// scanProjectRow scans a single project row into a Project
func scanProjectRow(row *sql.Row) (*Project, error) {
	var project Project
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&project.ID, &project.RootPath, &project.ModuleName, &project.GoVersion,
		&project.TotalFiles, &project.TotalBlocks, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

// getProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectWithQuerier(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `
		SELECT id, root_path, module_name, go_version, total_files, total_blocks,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE root_path = ?
	`
	return scanProjectRow(q.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return s.getProjectWithQuerier(ctx, s.querier(), rootPath)
}

// getProjectByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectByIDWithQuerier(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `
		SELECT id, root_path, module_name, go_version, total_files, total_blocks,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	return scanProjectRow(q.QueryRowContext(ctx, query, projectID))
}

func (s *SQLiteStorage) GetProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	return s.getProjectByIDWithQuerier(ctx, s.querier(), projectID)
}

// updateProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET module_name = ?, go_version = ?, total_files = ?, total_blocks = ?,
		    index_version = ?, last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		project.ModuleName, project.GoVersion, project.TotalFiles, project.TotalBlocks,
		project.IndexVersion, project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return s.updateProjectWithQuerier(ctx, s.querier(), project)
}

// listProjectsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listProjectsWithQuerier(ctx context.Context, q querier) ([]*Project, error) {
	query := `
		SELECT id, root_path, module_name, go_version, total_files, total_blocks,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		ORDER BY root_path
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	projects := make([]*Project, 0)
	for rows.Next() {
		var project Project
		var lastIndexedAt sql.NullTime
		err := rows.Scan(
			&project.ID, &project.RootPath, &project.ModuleName, &project.GoVersion,
			&project.TotalFiles, &project.TotalBlocks, &project.IndexVersion,
			&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if lastIndexedAt.Valid {
			project.LastIndexedAt = lastIndexedAt.Time
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.listProjectsWithQuerier(ctx, s.querier())
}

// deleteProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteProjectWithQuerier(ctx context.Context, q querier, projectID int64) error {
	query := `DELETE FROM projects WHERE id = ?`
	_, err := q.ExecContext(ctx, query, projectID)
	return err
}

func (s *SQLiteStorage) DeleteProject(ctx context.Context, projectID int64) error {
	return s.deleteProjectWithQuerier(ctx, s.querier(), projectID)
}

// File operations

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (project_id, file_path, package_name, content_hash, mod_time, size_bytes, line_count, block_count, dropped_lines, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			package_name = excluded.package_name,
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			line_count = excluded.line_count,
			block_count = excluded.block_count,
			dropped_lines = excluded.dropped_lines,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.ProjectID, file.FilePath, file.PackageName, file.ContentHash[:],
		file.ModTime, file.SizeBytes, file.LineCount, file.BlockCount,
		file.DroppedLines, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

// scanFile scans a file row from either a *sql.Row or *sql.Rows scanner
func scanFile(scan func(dest ...interface{}) error) (*File, error) {
	var file File
	var hash []byte
	err := scan(
		&file.ID, &file.ProjectID, &file.FilePath, &file.PackageName,
		&hash, &file.ModTime, &file.SizeBytes, &file.LineCount,
		&file.BlockCount, &file.DroppedLines,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	return &file, nil
}

const fileColumns = `id, project_id, file_path, package_name, content_hash, mod_time,
	       size_bytes, line_count, block_count, dropped_lines, last_indexed_at, created_at, updated_at`

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, projectID int64, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? AND file_path = ?`
	row := q.QueryRowContext(ctx, query, projectID, filePath)
	return scanFile(row.Scan)
}

func (s *SQLiteStorage) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), projectID, filePath)
}

// getFileByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileByIDWithQuerier(ctx context.Context, q querier, fileID int64) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	row := q.QueryRowContext(ctx, query, fileID)
	return scanFile(row.Scan)
}

func (s *SQLiteStorage) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return s.getFileByIDWithQuerier(ctx, s.querier(), fileID)
}

// deleteFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM files WHERE id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), fileID)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, projectID int64) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? ORDER BY file_path`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows.Scan)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier(), projectID)
}

// Block operations

// upsertBlockWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertBlockWithQuerier(ctx context.Context, q querier, block *Block) error {
	// Use atomic INSERT ... ON CONFLICT to avoid race conditions
	query := `
		INSERT INTO blocks (
			file_id, name, kind, receiver, exported,
			start_line, end_line, line_count, content, doc_comment, content_hash, terminated,
			is_constructor, is_test, is_benchmark, is_example, is_fuzz, is_main, is_init,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id, name, start_line)
		DO UPDATE SET
			kind = excluded.kind,
			receiver = excluded.receiver,
			exported = excluded.exported,
			end_line = excluded.end_line,
			line_count = excluded.line_count,
			content = excluded.content,
			doc_comment = excluded.doc_comment,
			content_hash = excluded.content_hash,
			terminated = excluded.terminated,
			is_constructor = excluded.is_constructor,
			is_test = excluded.is_test,
			is_benchmark = excluded.is_benchmark,
			is_example = excluded.is_example,
			is_fuzz = excluded.is_fuzz,
			is_main = excluded.is_main,
			is_init = excluded.is_init
		RETURNING id, created_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		block.FileID, block.Name, block.Kind, block.Receiver, block.Exported,
		block.StartLine, block.EndLine, block.LineCount, block.Content,
		block.DocComment, block.ContentHash[:], block.Terminated,
		block.IsConstructor, block.IsTest, block.IsBenchmark, block.IsExample,
		block.IsFuzz, block.IsMain, block.IsInit, now,
	).Scan(&block.ID, &block.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert block: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) UpsertBlock(ctx context.Context, block *Block) error {
	return s.upsertBlockWithQuerier(ctx, s.querier(), block)
}

// replaceFileBlocksWithQuerier deletes every block of a file and inserts
// the given blocks in order. Callers that need atomicity must pass a
// transaction querier.
func (s *SQLiteStorage) replaceFileBlocksWithQuerier(ctx context.Context, q querier, fileID int64, blocks []*Block) error {
	if err := s.deleteBlocksByFileWithQuerier(ctx, q, fileID); err != nil {
		return fmt.Errorf("failed to clear file blocks: %w", err)
	}
	for _, block := range blocks {
		block.FileID = fileID
		if err := s.upsertBlockWithQuerier(ctx, q, block); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceFileBlocks replaces every block of a file atomically
func (s *SQLiteStorage) ReplaceFileBlocks(ctx context.Context, fileID int64, blocks []*Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := s.replaceFileBlocksWithQuerier(ctx, tx, fileID, blocks); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// scanBlock scans a block row from either a *sql.Row or *sql.Rows scanner
func scanBlock(scan func(dest ...interface{}) error) (*Block, error) {
	var block Block
	var hash []byte
	err := scan(
		&block.ID, &block.FileID, &block.Name, &block.Kind, &block.Receiver,
		&block.Exported, &block.StartLine, &block.EndLine, &block.LineCount,
		&block.Content, &block.DocComment, &hash, &block.Terminated,
		&block.IsConstructor, &block.IsTest, &block.IsBenchmark, &block.IsExample,
		&block.IsFuzz, &block.IsMain, &block.IsInit, &block.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(block.ContentHash[:], hash)
	return &block, nil
}

const blockColumns = `id, file_id, name, kind, receiver, exported,
	       start_line, end_line, line_count, content, doc_comment, content_hash, terminated,
	       is_constructor, is_test, is_benchmark, is_example, is_fuzz, is_main, is_init, created_at`

// getBlockWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getBlockWithQuerier(ctx context.Context, q querier, blockID int64) (*Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks WHERE id = ?`
	row := q.QueryRowContext(ctx, query, blockID)
	return scanBlock(row.Scan)
}

func (s *SQLiteStorage) GetBlock(ctx context.Context, blockID int64) (*Block, error) {
	return s.getBlockWithQuerier(ctx, s.querier(), blockID)
}

// listBlocksByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listBlocksByFileWithQuerier(ctx context.Context, q querier, fileID int64) ([]*Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks WHERE file_id = ? ORDER BY start_line`
	rows, err := q.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	blocks := make([]*Block, 0)
	for rows.Next() {
		block, err := scanBlock(rows.Scan)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func (s *SQLiteStorage) ListBlocksByFile(ctx context.Context, fileID int64) ([]*Block, error) {
	return s.listBlocksByFileWithQuerier(ctx, s.querier(), fileID)
}

// deleteBlocksByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteBlocksByFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM blocks WHERE file_id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteBlocksByFile(ctx context.Context, fileID int64) error {
	return s.deleteBlocksByFileWithQuerier(ctx, s.querier(), fileID)
}

// Search operations

func (s *SQLiteStorage) SearchBlocksByName(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]NameResult, error) {
	// Implementation lives in block_search.go
	return searchBlocksByName(ctx, s.db, projectID, query, limit, filters)
}

func (s *SQLiteStorage) SearchBlocksText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	// Implementation lives in block_search.go
	return searchBlocksText(ctx, s.db, projectID, query, limit, filters)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	// Get project info
	project, err := s.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		Project:       project,
		KindCounts:    make(map[string]int),
		LastIndexedAt: project.LastIndexedAt,
	}

	// Count files and dropped lines
	var fileCount int
	var droppedLines sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), SUM(dropped_lines) FROM files WHERE project_id = ?",
		projectID).Scan(&fileCount, &droppedLines)
	if err != nil {
		return nil, err
	}
	status.FilesCount = fileCount
	if droppedLines.Valid {
		status.TotalDroppedLines = int(droppedLines.Int64)
	}

	// Count blocks
	var blockCount int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM blocks b
		JOIN files f ON b.file_id = f.id
		WHERE f.project_id = ?
	`, projectID).Scan(&blockCount)
	if err != nil {
		return nil, err
	}
	status.BlocksCount = blockCount

	// Per-kind breakdown
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.kind, COUNT(*) FROM blocks b
		JOIN files f ON b.file_id = f.id
		WHERE f.project_id = ?
		GROUP BY b.kind
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		status.KindCounts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Count unterminated trailing blocks
	var unterminated int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM blocks b
		JOIN files f ON b.file_id = f.id
		WHERE f.project_id = ? AND b.terminated = 0
	`, projectID).Scan(&unterminated)
	if err != nil {
		return nil, err
	}
	status.UnterminatedCount = unterminated

	// Calculate database size
	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	// Check health status
	var ftsName string
	ftsErr := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='blocks_fts'").Scan(&ftsName)
	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexBuilt:      ftsErr == nil,
	}

	return status, nil
}

// Transaction implementations - delegate to main storage for now

// Delegate read-only operations to storage (they can use DB or Tx)
// Write operations should use the internal helper that uses querier()

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return t.storage.createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return t.storage.getProjectWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) GetProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	return t.storage.getProjectByIDWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return t.storage.updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) ListProjects(ctx context.Context) ([]*Project, error) {
	return t.storage.listProjectsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteProject(ctx context.Context, projectID int64) error {
	return t.storage.deleteProjectWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), projectID, filePath)
}

func (t *sqliteTx) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return t.storage.getFileByIDWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpsertBlock(ctx context.Context, block *Block) error {
	return t.storage.upsertBlockWithQuerier(ctx, t.querier(), block)
}

func (t *sqliteTx) ReplaceFileBlocks(ctx context.Context, fileID int64, blocks []*Block) error {
	// Already inside a transaction; run directly on its querier
	return t.storage.replaceFileBlocksWithQuerier(ctx, t.querier(), fileID, blocks)
}

func (t *sqliteTx) GetBlock(ctx context.Context, blockID int64) (*Block, error) {
	return t.storage.getBlockWithQuerier(ctx, t.querier(), blockID)
}

func (t *sqliteTx) ListBlocksByFile(ctx context.Context, fileID int64) ([]*Block, error) {
	return t.storage.listBlocksByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteBlocksByFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteBlocksByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) SearchBlocksByName(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]NameResult, error) {
	return t.storage.SearchBlocksByName(ctx, projectID, query, limit, filters)
}

func (t *sqliteTx) SearchBlocksText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return t.storage.SearchBlocksText(ctx, projectID, query, limit, filters)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return t.storage.GetStatus(ctx, projectID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	// We return an error to prevent accidental misuse
	// If savepoints are needed in the future, implement here
	return nil, errors.New("nested transactions not supported")
}
