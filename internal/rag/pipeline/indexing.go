package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

// embedBatchSize bounds how many chunk texts go to the embedding API per
// request.
const embedBatchSize = 32

// IndexReport summarizes one ingestion run.
type IndexReport struct {
	Source    string `json:"source"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Replaced  int64  `json:"replaced"`
}

// IndexingPipeline orchestrates loading, splitting, embedding, and storing
// documents.
type IndexingPipeline struct {
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.VectorStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.VectorStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		splitter:    splitter,
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run executes the indexing pipeline for one source. Chunks previously
// stored for the same source are deleted first, so re-ingesting a file
// replaces it instead of duplicating it.
func (p *IndexingPipeline) Run(ctx context.Context, loader interfaces.Loader, path string) (*IndexReport, error) {
	p.log.Info(fmt.Sprintf("Starting indexing for: %s", path))

	docs, err := loader.Load(ctx, path)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to load %s: %v", path, err))
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	if len(docs) == 0 {
		p.log.Warn(fmt.Sprintf("No content loaded from: %s", path))
		return &IndexReport{Source: path}, nil
	}

	chunks, err := p.splitter.Split(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}

	report := &IndexReport{Source: docs[0].Source, Documents: len(docs), Chunks: len(chunks)}
	if len(chunks) == 0 {
		p.log.Warn(fmt.Sprintf("No chunks produced from: %s", path))
		return report, nil
	}

	replaced, err := p.vectorStore.DeleteBySource(ctx, report.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to delete existing chunks: %w", err)
	}
	report.Replaced = replaced

	if err := p.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := p.vectorStore.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	p.log.Info(fmt.Sprintf("Indexed %s: %d documents, %d chunks (%d replaced)",
		report.Source, report.Documents, report.Chunks, report.Replaced))
	return report, nil
}

// embedChunks embeds all chunk texts in bounded batches. Batches run
// concurrently and results land at their original positions, so chunk order
// is unaffected.
func (p *IndexingPipeline) embedChunks(ctx context.Context, chunks []*schema.Document) error {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		eg.Go(func() error {
			texts := make([]string, len(batch))
			for i, chunk := range batch {
				texts[i] = chunk.Text
			}

			embeddings, err := p.embedder.EmbedBatch(gCtx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed chunks: %w", err)
			}
			if len(embeddings) != len(batch) {
				return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddings))
			}

			for i, chunk := range batch {
				chunk.Embedding = embeddings[i]
			}
			return nil
		})
	}

	return eg.Wait()
}
