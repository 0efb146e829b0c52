package splitters

import (
	"context"
	"strings"
	"testing"

	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

func newTestSplitter(t *testing.T, size, overlap int) *TokenSplitter {
	t.Helper()
	s, err := NewTokenSplitter(size, overlap)
	if err != nil {
		t.Fatalf("NewTokenSplitter(%d, %d) error = %v", size, overlap, err)
	}
	return s
}

func testDoc(text string) *schema.Document {
	return &schema.Document{
		ID:     "doc-1",
		Source: "cv.txt",
		Text:   text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: "cv.txt",
		},
	}
}

func TestNewTokenSplitter_InvalidConfig(t *testing.T) {
	if _, err := NewTokenSplitter(0, 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := NewTokenSplitter(64, 64); err == nil {
		t.Error("expected error for overlap equal to chunk size")
	}
	if _, err := NewTokenSplitter(64, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s := newTestSplitter(t, 64, 8)

	chunks, err := s.Split(context.Background(), []*schema.Document{testDoc(""), testDoc("   \n\t ")})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Split() returned %d chunks for empty documents, want 0", len(chunks))
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := newTestSplitter(t, 128, 16)

	chunks, err := s.Split(context.Background(), []*schema.Document{testDoc("Senior Go engineer with ten years of experience.")})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(chunks))
	}

	c := chunks[0]
	if c.Ordinal != 0 {
		t.Errorf("Ordinal = %d, want 0", c.Ordinal)
	}
	if c.Source != "cv.txt" {
		t.Errorf("Source = %q, want cv.txt", c.Source)
	}
	if c.StartToken != 0 || c.EndToken != c.TokenCount {
		t.Errorf("token span [%d, %d) inconsistent with TokenCount %d", c.StartToken, c.EndToken, c.TokenCount)
	}
	if got := s.CountTokens(c.Text); got != c.TokenCount {
		t.Errorf("CountTokens(chunk text) = %d, want %d", got, c.TokenCount)
	}
}

func TestSplit_ChunkSizeInvariant(t *testing.T) {
	s := newTestSplitter(t, 32, 8)
	text := strings.Repeat("Led the migration of a monolith to event-driven services. ", 40)

	chunks, err := s.Split(context.Background(), []*schema.Document{testDoc(text)})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.TokenCount > s.ChunkSize {
			t.Errorf("chunk %d: TokenCount %d exceeds chunk size %d", i, c.TokenCount, s.ChunkSize)
		}
		if c.Ordinal != i {
			t.Errorf("chunk %d: Ordinal = %d", i, c.Ordinal)
		}
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	s := newTestSplitter(t, 32, 8)
	text := strings.Repeat("Designed and operated PostgreSQL clusters for analytics workloads. ", 40)

	chunks, err := s.Split(context.Background(), []*schema.Document{testDoc(text)})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		prev, next := chunks[i], chunks[i+1]
		if overlap := prev.EndToken - next.StartToken; overlap != s.ChunkOverlap {
			t.Errorf("chunks %d/%d: overlap = %d tokens, want %d", i, i+1, overlap, s.ChunkOverlap)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := newTestSplitter(t, 32, 8)
	text := strings.Repeat("Built CI pipelines and release tooling for a 30-person team. ", 30)

	first, err := s.Split(context.Background(), []*schema.Document{testDoc(text)})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	second, err := s.Split(context.Background(), []*schema.Document{testDoc(text)})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text ||
			first[i].StartToken != second[i].StartToken ||
			first[i].EndToken != second[i].EndToken {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_OrdinalsContinueAcrossPages(t *testing.T) {
	s := newTestSplitter(t, 128, 16)
	pages := []*schema.Document{
		{ID: "p1", Source: "cv.pdf", Text: "First page about work history."},
		{ID: "p2", Source: "cv.pdf", Text: "Second page about education."},
		{ID: "p3", Source: "cv.pdf", Text: "Third page about publications."},
	}

	chunks, err := s.Split(context.Background(), pages)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Split() returned %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d: Ordinal = %d, want %d", i, c.Ordinal, i)
		}
	}
}

func TestSplit_MetadataNotShared(t *testing.T) {
	s := newTestSplitter(t, 32, 8)
	text := strings.Repeat("Mentored junior engineers and ran the hiring loop. ", 40)

	chunks, err := s.Split(context.Background(), []*schema.Document{testDoc(text)})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	chunks[0].Metadata["marker"] = true
	if _, ok := chunks[1].Metadata["marker"]; ok {
		t.Error("metadata map is shared between chunks")
	}
}
