package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/rag/assembler"
	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/pipeline"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type stubStore struct {
	chunks  []*schema.Document
	deleted map[string]int64
}

func (s *stubStore) Add(ctx context.Context, docs []*schema.Document) error { return nil }

func (s *stubStore) Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]*schema.Document, error) {
	return s.chunks, nil
}

func (s *stubStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	return s.deleted[source], nil
}

func (s *stubStore) Sources(ctx context.Context) ([]string, error) {
	return []string{"cv.pdf"}, nil
}

func (s *stubStore) Count(ctx context.Context) (int64, error) { return int64(len(s.chunks)), nil }
func (s *stubStore) Truncate(ctx context.Context) error       { return nil }

type stubLLM struct{}

func (stubLLM) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	return "The candidate has eight years of Go experience.", nil
}

type memoryQueryLog struct {
	mu      sync.Mutex
	records []*interfaces.QueryRecord
}

func (l *memoryQueryLog) Record(ctx context.Context, rec *interfaces.QueryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (l *memoryQueryLog) Recent(ctx context.Context, limit int) ([]*interfaces.QueryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*interfaces.QueryRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}

func (l *memoryQueryLog) waitForRecords(t *testing.T, n int) []*interfaces.QueryRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		count := len(l.records)
		l.mu.Unlock()
		if count >= n {
			recs, _ := l.Recent(context.Background(), n)
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("query log never reached %d records", n)
	return nil
}

func newTestService(t *testing.T, store *stubStore, queryLog interfaces.QueryLog) *RAGService {
	t.Helper()

	cfg, err := config.LoadConfig("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	log := logger.New("service-test")
	embedder := stubEmbedder{}

	ctxAssembler, err := assembler.New(cfg.RAG.MaxContextTokens)
	if err != nil {
		t.Fatalf("assembler.New() error = %v", err)
	}

	return New(
		pipeline.NewRetrievalPipeline(embedder, store, log),
		pipeline.NewIndexingPipeline(nil, embedder, store, log),
		pipeline.NewQAPipeline(stubLLM{}, cfg.RAG.MaxNewTokens, cfg.RAG.Temperature, log),
		ctxAssembler,
		store,
		queryLog,
		nil,
		cfg,
		log,
	)
}

func TestAnswer_TooShort(t *testing.T) {
	svc := newTestService(t, &stubStore{}, &memoryQueryLog{})

	if _, err := svc.Answer(context.Background(), "  hi "); !errors.Is(err, ErrQuestionTooShort) {
		t.Errorf("Answer() error = %v, want ErrQuestionTooShort", err)
	}
}

func TestAnswer_NoChunks(t *testing.T) {
	queryLog := &memoryQueryLog{}
	svc := newTestService(t, &stubStore{}, queryLog)

	result, err := svc.Answer(context.Background(), "What is the candidate's name?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Answer != FallbackAnswer {
		t.Errorf("answer = %q, want fallback", result.Answer)
	}
	if result.NumChunks != 0 || len(result.Sources) != 0 {
		t.Errorf("result = %+v, want no chunks and no sources", result)
	}

	recs := queryLog.waitForRecords(t, 1)
	if recs[0].Answer != FallbackAnswer {
		t.Errorf("recorded answer = %q", recs[0].Answer)
	}
}

func TestAnswer_WithChunks(t *testing.T) {
	queryLog := &memoryQueryLog{}
	store := &stubStore{chunks: []*schema.Document{
		{ID: "c1", Source: "cv.pdf", Ordinal: 0, Text: "Eight years of Go.", Similarity: 0.92},
		{ID: "c2", Source: "cv.pdf", Ordinal: 1, Text: "PostgreSQL and Redis.", Similarity: 0.85},
		{ID: "c3", Source: "about.md", Ordinal: 0, Text: "Based in Berlin.", Similarity: 0.81},
	}}
	svc := newTestService(t, store, queryLog)

	result, err := svc.Answer(context.Background(), "How much Go experience?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Answer != "The candidate has eight years of Go experience." {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.NumChunks != 3 {
		t.Errorf("NumChunks = %d, want 3", result.NumChunks)
	}
	wantSources := []string{"about.md", "cv.pdf"}
	if len(result.Sources) != len(wantSources) {
		t.Fatalf("sources = %v, want %v", result.Sources, wantSources)
	}
	for i, src := range wantSources {
		if result.Sources[i] != src {
			t.Errorf("sources = %v, want %v", result.Sources, wantSources)
		}
	}

	recs := queryLog.waitForRecords(t, 1)
	if recs[0].NumChunks != 3 {
		t.Errorf("recorded NumChunks = %d, want 3", recs[0].NumChunks)
	}
}

func TestDeleteSource(t *testing.T) {
	store := &stubStore{deleted: map[string]int64{"cv.pdf": 7}}
	svc := newTestService(t, store, &memoryQueryLog{})

	deleted, err := svc.DeleteSource(context.Background(), "cv.pdf")
	if err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}
	if deleted != 7 {
		t.Errorf("deleted = %d, want 7", deleted)
	}
}

func TestStats(t *testing.T) {
	store := &stubStore{chunks: []*schema.Document{{ID: "c1"}}}
	svc := newTestService(t, store, &memoryQueryLog{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalChunks != 1 {
		t.Errorf("TotalChunks = %d, want 1", stats.TotalChunks)
	}
	if stats.VectorStore != "pgvector" {
		t.Errorf("VectorStore = %q, want pgvector", stats.VectorStore)
	}
}
