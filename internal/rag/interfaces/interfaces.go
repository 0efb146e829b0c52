package interfaces

import (
	"context"
	"time"

	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// Loader is the interface for loading data from a source (file or URL) and
// converting it into a list of Document objects.
type Loader interface {
	Load(ctx context.Context, path string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting loaded Documents into
// token-bounded chunks.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embedding vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest carries a prompt and sampling parameters to an LLM.
type GenerateRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// LLM is the interface for a large language model that generates text.
type LLM interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// VectorStore is the interface for storing and querying chunk vectors.
// Search applies both the top-k limit and the similarity threshold, so only
// chunks at or above the threshold are ever returned.
type VectorStore interface {
	Add(ctx context.Context, docs []*schema.Document) error
	Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]*schema.Document, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
	Sources(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
}

// QueryRecord is one answered question, kept for history.
type QueryRecord struct {
	Question  string    `bson:"question" json:"question"`
	Answer    string    `bson:"answer" json:"answer"`
	Sources   []string  `bson:"sources" json:"sources"`
	NumChunks int       `bson:"num_chunks" json:"num_chunks"`
	ElapsedMs int64     `bson:"elapsed_ms" json:"elapsed_ms"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// QueryLog records answered questions and returns recent history.
type QueryLog interface {
	Record(ctx context.Context, rec *QueryRecord) error
	Recent(ctx context.Context, limit int) ([]*QueryRecord, error)
}
