package vectorstore

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// ChunkRecord is the database row for one stored chunk.
type ChunkRecord struct {
	ID         string            `gorm:"primaryKey;size:36"`
	Source     string            `gorm:"size:512;not null;index:idx_cv_chunks_source_ordinal"`
	Ordinal    int               `gorm:"not null;index:idx_cv_chunks_source_ordinal"`
	Text       string            `gorm:"type:text;not null"`
	StartToken int               `gorm:"default:0"`
	EndToken   int               `gorm:"default:0"`
	TokenCount int               `gorm:"default:0"`
	Embedding  pgvector.Vector   `gorm:"type:vector"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
}

// TableName sets the table used for chunk storage.
func (ChunkRecord) TableName() string {
	return "cv_chunks"
}

// PgVectorStore is a VectorStore backed by PostgreSQL with the pgvector
// extension. Similarity is cosine: 1 minus the cosine distance reported by
// the <=> operator.
type PgVectorStore struct {
	db  *gorm.DB
	dim int
}

// NewPgVectorStore creates the store and runs its migration: the vector
// extension, the chunk table with the configured embedding dimension, and
// the search indexes.
func NewPgVectorStore(db *gorm.DB, dim int) (*PgVectorStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	s := &PgVectorStore{db: db, dim: dim}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) migrate() error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS cv_chunks (
			id VARCHAR(36) PRIMARY KEY,
			source VARCHAR(512) NOT NULL,
			ordinal INTEGER NOT NULL,
			text TEXT NOT NULL,
			start_token INTEGER DEFAULT 0,
			end_token INTEGER DEFAULT 0,
			token_count INTEGER DEFAULT 0,
			embedding vector(%d),
			metadata JSONB
		)`, s.dim),
		"CREATE INDEX IF NOT EXISTS idx_cv_chunks_source_ordinal ON cv_chunks (source, ordinal)",
		"CREATE INDEX IF NOT EXISTS idx_cv_chunks_embedding ON cv_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)",
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Add stores a batch of embedded chunks.
func (s *PgVectorStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	records := make([]*ChunkRecord, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != s.dim {
			return fmt.Errorf("chunk %s has embedding dimension %d, store expects %d", doc.ID, len(doc.Embedding), s.dim)
		}
		records = append(records, &ChunkRecord{
			ID:         doc.ID,
			Source:     doc.Source,
			Ordinal:    doc.Ordinal,
			Text:       doc.Text,
			StartToken: doc.StartToken,
			EndToken:   doc.EndToken,
			TokenCount: doc.TokenCount,
			Embedding:  pgvector.NewVector(doc.Embedding),
			Metadata:   datatypes.JSONMap(doc.Metadata),
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// Search returns up to topK chunks whose cosine similarity to the query
// embedding is at or above the threshold, most similar first. The threshold
// is applied in SQL so discarded rows never leave the database.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]*schema.Document, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("query embedding has dimension %d, store expects %d", len(embedding), s.dim)
	}

	var rows []struct {
		ChunkRecord
		Similarity float64 `gorm:"column:similarity"`
	}

	vec := pgvector.NewVector(embedding)
	err := s.db.WithContext(ctx).Raw(`
		SELECT *, 1 - (embedding <=> ?) AS similarity
		FROM cv_chunks
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> ?) >= ?
		ORDER BY embedding <=> ?
		LIMIT ?`,
		vec, vec, threshold, vec, topK,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	docs := make([]*schema.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, &schema.Document{
			ID:         row.ID,
			Source:     row.Source,
			Ordinal:    row.Ordinal,
			Text:       row.Text,
			StartToken: row.StartToken,
			EndToken:   row.EndToken,
			TokenCount: row.TokenCount,
			Similarity: row.Similarity,
			Metadata:   map[string]interface{}(row.Metadata),
		})
	}
	return docs, nil
}

// DeleteBySource removes every chunk from the given source and returns how
// many rows were deleted.
func (s *PgVectorStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	result := s.db.WithContext(ctx).Where("source = ?", source).Delete(&ChunkRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete chunks for %q: %w", source, result.Error)
	}
	return result.RowsAffected, nil
}

// Sources returns the distinct source names currently stored, sorted.
func (s *PgVectorStore) Sources(ctx context.Context) ([]string, error) {
	var sources []string
	err := s.db.WithContext(ctx).
		Model(&ChunkRecord{}).
		Distinct("source").
		Order("source").
		Pluck("source", &sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// Count returns the total number of stored chunks.
func (s *PgVectorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ChunkRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Truncate removes all stored chunks.
func (s *PgVectorStore) Truncate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("TRUNCATE TABLE cv_chunks").Error; err != nil {
		return fmt.Errorf("failed to truncate chunk table: %w", err)
	}
	return nil
}

// compile-time check to ensure PgVectorStore implements VectorStore
var _ interfaces.VectorStore = (*PgVectorStore)(nil)
