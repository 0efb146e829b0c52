// Package service implements question answering and ingestion on top of the
// retrieval, assembly, and generation pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/razmarrus/cv-rag/internal/cache"
	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/rag/assembler"
	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/loaders"
	"github.com/razmarrus/cv-rag/internal/rag/pipeline"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

// FallbackAnswer is returned when retrieval finds nothing above the
// similarity threshold.
const FallbackAnswer = "I couldn't find relevant information to answer your question."

// ErrQuestionTooShort is returned for questions under three characters.
var ErrQuestionTooShort = errors.New("question must be at least 3 characters")

// AnswerResult is the outcome of answering one question.
type AnswerResult struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	NumChunks int      `json:"num_chunks"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Cached    bool     `json:"cached"`
}

// Stats summarizes the state of the knowledge base.
type Stats struct {
	TotalChunks    int64    `json:"total_chunks"`
	Sources        []string `json:"sources"`
	EmbeddingModel string   `json:"embedding_model"`
	LLMModel       string   `json:"llm_model"`
	VectorStore    string   `json:"vector_store"`
}

// RAGService coordinates the full question answering flow and document
// ingestion.
type RAGService struct {
	retrieval   *pipeline.RetrievalPipeline
	indexing    *pipeline.IndexingPipeline
	qa          *pipeline.QAPipeline
	assembler   *assembler.ContextAssembler
	vectorStore interfaces.VectorStore
	queryLog    interfaces.QueryLog
	answerCache *cache.AnswerCache
	cfg         *config.AppConfig
	log         *logger.Logger
}

// New creates a RAGService. The answer cache may be nil, in which case every
// question goes through the full pipeline.
func New(
	retrieval *pipeline.RetrievalPipeline,
	indexing *pipeline.IndexingPipeline,
	qa *pipeline.QAPipeline,
	ctxAssembler *assembler.ContextAssembler,
	vectorStore interfaces.VectorStore,
	queryLog interfaces.QueryLog,
	answerCache *cache.AnswerCache,
	cfg *config.AppConfig,
	log *logger.Logger,
) *RAGService {
	return &RAGService{
		retrieval:   retrieval,
		indexing:    indexing,
		qa:          qa,
		assembler:   ctxAssembler,
		vectorStore: vectorStore,
		queryLog:    queryLog,
		answerCache: answerCache,
		cfg:         cfg,
		log:         log,
	}
}

// Answer runs the four stages for one question: embed, search, assemble,
// generate. Questions with no relevant chunks get the fallback answer
// instead of an error.
func (s *RAGService) Answer(ctx context.Context, question string) (*AnswerResult, error) {
	start := time.Now()

	question = strings.TrimSpace(question)
	if len(question) < 3 {
		return nil, ErrQuestionTooShort
	}

	if s.answerCache != nil {
		if cached, err := s.answerCache.Get(ctx, question); err == nil {
			s.log.WithField("question", question).Info("Answer served from cache")
			return &AnswerResult{
				Question:  question,
				Answer:    cached.Answer,
				Sources:   cached.Sources,
				NumChunks: cached.NumChunks,
				ElapsedMs: time.Since(start).Milliseconds(),
				Cached:    true,
			}, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn(fmt.Sprintf("Answer cache lookup failed: %v", err))
		}
	}

	chunks, err := s.retrieval.Run(ctx, question, s.cfg.RAG.TopK, s.cfg.RAG.SimilarityThreshold)
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{
		Question:  question,
		NumChunks: len(chunks),
		Sources:   sourcesOf(chunks),
	}

	if len(chunks) == 0 {
		result.Answer = FallbackAnswer
		result.ElapsedMs = time.Since(start).Milliseconds()
		s.recordQuery(result)
		return result, nil
	}

	assembled := s.assembler.Assemble(question, chunks)

	answer, err := s.qa.Run(ctx, question, assembled.Context)
	if err != nil {
		return nil, err
	}

	result.Answer = answer
	result.ElapsedMs = time.Since(start).Milliseconds()
	s.recordQuery(result)

	if s.answerCache != nil {
		if err := s.answerCache.Set(ctx, question, &cache.CachedAnswer{
			Answer:    result.Answer,
			Sources:   result.Sources,
			NumChunks: result.NumChunks,
		}); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to cache answer: %v", err))
		}
	}

	return result, nil
}

// recordQuery writes the history entry in the background. A slow or broken
// history store must not delay the response.
func (s *RAGService) recordQuery(result *AnswerResult) {
	rec := &interfaces.QueryRecord{
		Question:  result.Question,
		Answer:    result.Answer,
		Sources:   result.Sources,
		NumChunks: result.NumChunks,
		ElapsedMs: result.ElapsedMs,
		CreatedAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.queryLog.Record(ctx, rec); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to record query: %v", err))
		}
	}()
}

// Search returns the raw retrieval results for a question without
// generation.
func (s *RAGService) Search(ctx context.Context, question string, topK int) ([]*schema.Document, error) {
	question = strings.TrimSpace(question)
	if len(question) < 3 {
		return nil, ErrQuestionTooShort
	}
	if topK <= 0 {
		topK = s.cfg.RAG.TopK
	}
	return s.retrieval.Run(ctx, question, topK, s.cfg.RAG.SimilarityThreshold)
}

// Ingest loads, chunks, embeds, and stores one file or URL. Cached answers
// are invalidated afterwards because they may reference replaced content.
func (s *RAGService) Ingest(ctx context.Context, path string) (*pipeline.IndexReport, error) {
	report, err := s.indexing.Run(ctx, loaders.ForPath(path), path)
	if err != nil {
		return nil, err
	}

	if s.answerCache != nil && report.Chunks > 0 {
		if err := s.answerCache.Invalidate(ctx); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to invalidate answer cache: %v", err))
		}
	}
	return report, nil
}

// Sources lists the distinct ingested sources.
func (s *RAGService) Sources(ctx context.Context) ([]string, error) {
	return s.vectorStore.Sources(ctx)
}

// DeleteSource removes all chunks of one source and invalidates cached
// answers.
func (s *RAGService) DeleteSource(ctx context.Context, source string) (int64, error) {
	deleted, err := s.vectorStore.DeleteBySource(ctx, source)
	if err != nil {
		return 0, err
	}

	if s.answerCache != nil && deleted > 0 {
		if err := s.answerCache.Invalidate(ctx); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to invalidate answer cache: %v", err))
		}
	}
	return deleted, nil
}

// History returns recent answered questions, newest first.
func (s *RAGService) History(ctx context.Context, limit int) ([]*interfaces.QueryRecord, error) {
	return s.queryLog.Recent(ctx, limit)
}

// Stats reports the size of the knowledge base and the configured models.
func (s *RAGService) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.vectorStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.vectorStore.Sources(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalChunks:    count,
		Sources:        sources,
		EmbeddingModel: s.cfg.Embedding.Model,
		LLMModel:       s.cfg.LLM.Model,
		VectorStore:    s.cfg.VectorStore.Provider,
	}, nil
}

// sourcesOf returns the distinct sources among chunks, sorted.
func sourcesOf(chunks []*schema.Document) []string {
	seen := make(map[string]struct{})
	sources := make([]string, 0)
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Source]; ok {
			continue
		}
		seen[chunk.Source] = struct{}{}
		sources = append(sources, chunk.Source)
	}
	sort.Strings(sources)
	return sources
}
