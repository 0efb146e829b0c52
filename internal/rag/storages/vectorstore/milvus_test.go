package vectorstore

import (
	"testing"

	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

func scoredDoc(id string, similarity float64) *schema.Document {
	return &schema.Document{ID: id, Source: "cv.pdf", Similarity: similarity}
}

func TestRankAboveThreshold_ExcludesBelowThreshold(t *testing.T) {
	docs := []*schema.Document{
		scoredDoc("a", 0.91),
		scoredDoc("b", 0.42),
		scoredDoc("c", 0.70),
		scoredDoc("d", 0.69),
	}

	kept := rankAboveThreshold(docs, 0.7)

	if len(kept) != 2 {
		t.Fatalf("kept %d chunks, want 2", len(kept))
	}
	for _, doc := range kept {
		if doc.Similarity < 0.7 {
			t.Errorf("chunk %s with similarity %.2f passed the 0.7 threshold", doc.ID, doc.Similarity)
		}
	}
}

func TestRankAboveThreshold_BoundaryIsInclusive(t *testing.T) {
	kept := rankAboveThreshold([]*schema.Document{scoredDoc("a", 0.7)}, 0.7)
	if len(kept) != 1 {
		t.Fatalf("kept %d chunks, want 1: similarity equal to the threshold is retrievable", len(kept))
	}
}

func TestRankAboveThreshold_SortsMostSimilarFirst(t *testing.T) {
	docs := []*schema.Document{
		scoredDoc("low", 0.75),
		scoredDoc("high", 0.95),
		scoredDoc("mid", 0.85),
	}

	kept := rankAboveThreshold(docs, 0.5)

	want := []string{"high", "mid", "low"}
	if len(kept) != len(want) {
		t.Fatalf("kept %d chunks, want %d", len(kept), len(want))
	}
	for i, id := range want {
		if kept[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, kept[i].ID, id)
		}
	}
}

func TestRankAboveThreshold_AllBelowThreshold(t *testing.T) {
	docs := []*schema.Document{scoredDoc("a", 0.1), scoredDoc("b", 0.2)}
	if kept := rankAboveThreshold(docs, 0.7); len(kept) != 0 {
		t.Errorf("kept %d chunks, want 0", len(kept))
	}
}
