package storage

import (
	"context"
	"time"

	"github.com/dshills/goblocks/pkg/types"
)

// Storage defines the interface for persisting and querying extracted blocks
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	GetProjectByID(ctx context.Context, projectID int64) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, projectID int64) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Block operations
	UpsertBlock(ctx context.Context, block *Block) error
	ReplaceFileBlocks(ctx context.Context, fileID int64, blocks []*Block) error
	GetBlock(ctx context.Context, blockID int64) (*Block, error)
	ListBlocksByFile(ctx context.Context, fileID int64) ([]*Block, error)
	DeleteBlocksByFile(ctx context.Context, fileID int64) error

	// Search operations
	SearchBlocksByName(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]NameResult, error)
	SearchBlocksText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed Go codebase
type Project struct {
	ID            int64
	RootPath      string
	ModuleName    string
	GoVersion     string
	TotalFiles    int
	TotalBlocks   int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File represents a tracked Go source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	PackageName   string
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	LineCount     int
	BlockCount    int
	DroppedLines  int
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Block represents a persisted declaration block
type Block struct {
	ID            int64
	FileID        int64
	Name          string
	Kind          string
	Receiver      string
	Exported      bool
	StartLine     int
	EndLine       int
	LineCount     int
	Content       string
	DocComment    string
	ContentHash   [32]byte
	Terminated    bool
	IsConstructor bool
	IsTest        bool
	IsBenchmark   bool
	IsExample     bool
	IsFuzz        bool
	IsMain        bool
	IsInit        bool
	CreatedAt     time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Kinds        []string // Filter by block kind
	Roles        []string // Filter by naming-convention role flags
	Packages     []string // Filter by package names
	FilePattern  string   // Glob pattern for file paths
	Receiver     string   // Filter methods by receiver base type
	ExportedOnly bool     // Only exported blocks
}

// NameResult represents a result from declaration-name search
type NameResult struct {
	BlockID   int64
	NameScore float64
}

// TextResult represents a result from full-text search
type TextResult struct {
	BlockID   int64
	BM25Score float64
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project           *Project
	FilesCount        int
	BlocksCount       int
	KindCounts        map[string]int
	UnterminatedCount int
	TotalDroppedLines int
	IndexSizeMB       float64
	LastIndexedAt     time.Time
	Health            HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexBuilt      bool
}

// FromTypesBlock converts types.Block to a storage Block
func FromTypesBlock(b *types.Block, fileID int64) *Block {
	return &Block{
		FileID:        fileID,
		Name:          b.Name,
		Kind:          string(b.Kind),
		Receiver:      b.Receiver,
		Exported:      b.Exported,
		StartLine:     b.StartLine,
		EndLine:       b.EndLine,
		LineCount:     b.LineCount(),
		Content:       b.Content(),
		DocComment:    b.DocComment(),
		ContentHash:   b.ContentHash(),
		Terminated:    b.Terminated,
		IsConstructor: b.IsConstructor,
		IsTest:        b.IsTest,
		IsBenchmark:   b.IsBenchmark,
		IsExample:     b.IsExample,
		IsFuzz:        b.IsFuzz,
		IsMain:        b.IsMain,
		IsInit:        b.IsInit,
	}
}
