package pipeline

import (
	"context"
	"fmt"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

// RetrievalPipeline embeds a question and finds the most similar stored
// chunks.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run embeds the question and returns up to topK chunks whose similarity is
// at or above the threshold, most similar first. An empty result is not an
// error; the caller decides how to answer without context.
func (p *RetrievalPipeline) Run(ctx context.Context, question string, topK int, threshold float64) ([]*schema.Document, error) {
	embedding, err := p.embedder.Embed(ctx, question)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed question: %v", err))
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := p.vectorStore.Search(ctx, embedding, topK, threshold)
	if err != nil {
		p.log.Error(fmt.Sprintf("Vector search failed: %v", err))
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	p.log.Info(fmt.Sprintf("Retrieved %d chunks above threshold %.2f", len(chunks), threshold))
	return chunks, nil
}
