package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// MilvusStore is a VectorStore backed by a Milvus collection. The collection
// is indexed with cosine similarity, so search scores are directly
// comparable with the pgvector store's similarities.
type MilvusStore struct {
	client     client.Client
	collection string
	dim        int
}

// NewMilvusStore creates the store and bootstraps its collection: schema,
// vector index, and load. An existing collection is reused as-is.
func NewMilvusStore(ctx context.Context, c client.Client, collection string, dim int) (*MilvusStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}

	s := &MilvusStore{client: c, collection: collection, dim: dim}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %q: %w", s.collection, err)
	}

	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("token chunks of ingested documents").
			WithField(entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName("source").WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName("ordinal").WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName("token_count").WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build vector index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, "embedding", idx, false); err != nil {
			return fmt.Errorf("failed to create vector index: %w", err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection %q: %w", s.collection, err)
	}
	return nil
}

// Add stores a batch of embedded chunks and flushes the collection so they
// become searchable.
func (s *MilvusStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	sources := make([]string, len(docs))
	ordinals := make([]int64, len(docs))
	texts := make([]string, len(docs))
	tokenCounts := make([]int64, len(docs))
	vectors := make([][]float32, len(docs))

	for i, doc := range docs {
		if len(doc.Embedding) != s.dim {
			return fmt.Errorf("chunk %s has embedding dimension %d, store expects %d", doc.ID, len(doc.Embedding), s.dim)
		}
		ids[i] = doc.ID
		sources[i] = doc.Source
		ordinals[i] = int64(doc.Ordinal)
		texts[i] = doc.Text
		tokenCounts[i] = int64(doc.TokenCount)
		vectors[i] = doc.Embedding
	}

	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnInt64("ordinal", ordinals),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnInt64("token_count", tokenCounts),
		entity.NewColumnFloatVector("embedding", s.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	return nil
}

// Search returns up to topK chunks with cosine similarity at or above the
// threshold, most similar first. With the COSINE metric Milvus scores are
// similarities, so the threshold applies to them directly.
func (s *MilvusStore) Search(ctx context.Context, embedding []float32, topK int, threshold float64) ([]*schema.Document, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("query embedding has dimension %d, store expects %d", len(embedding), s.dim)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := s.client.Search(
		ctx,
		s.collection,
		nil,
		"",
		[]string{"id", "source", "ordinal", "text", "token_count"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var docs []*schema.Document
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			doc := &schema.Document{Similarity: float64(result.Scores[i])}
			doc.ID, _ = varcharValue(result.Fields.GetColumn("id"), i)
			doc.Source, _ = varcharValue(result.Fields.GetColumn("source"), i)
			doc.Text, _ = varcharValue(result.Fields.GetColumn("text"), i)
			if v, err := int64Value(result.Fields.GetColumn("ordinal"), i); err == nil {
				doc.Ordinal = int(v)
			}
			if v, err := int64Value(result.Fields.GetColumn("token_count"), i); err == nil {
				doc.TokenCount = int(v)
			}
			docs = append(docs, doc)
		}
	}

	return rankAboveThreshold(docs, threshold), nil
}

// rankAboveThreshold keeps the chunks whose similarity is at or above the
// threshold and orders them most similar first.
func rankAboveThreshold(docs []*schema.Document, threshold float64) []*schema.Document {
	kept := docs[:0]
	for _, doc := range docs {
		if doc.Similarity >= threshold {
			kept = append(kept, doc)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Similarity > kept[j].Similarity })
	return kept
}

// DeleteBySource removes every chunk from the given source and returns how
// many were deleted. Milvus deletes do not report row counts, so the rows
// are counted first.
func (s *MilvusStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	expr := fmt.Sprintf("source == %q", source)

	rs, err := s.client.Query(ctx, s.collection, nil, expr, []string{"id"})
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for %q: %w", source, err)
	}
	var deleted int64
	if col := rs.GetColumn("id"); col != nil {
		deleted = int64(col.Len())
	}
	if deleted == 0 {
		return 0, nil
	}

	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return 0, fmt.Errorf("failed to delete chunks for %q: %w", source, err)
	}
	return deleted, nil
}

// Sources returns the distinct source names currently stored, sorted.
func (s *MilvusStore) Sources(ctx context.Context) ([]string, error) {
	rs, err := s.client.Query(ctx, s.collection, nil, `id != ""`, []string{"source"})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	seen := make(map[string]struct{})
	col := rs.GetColumn("source")
	if col != nil {
		for i := 0; i < col.Len(); i++ {
			if v, err := varcharValue(col, i); err == nil {
				seen[v] = struct{}{}
			}
		}
	}

	sources := make([]string, 0, len(seen))
	for v := range seen {
		sources = append(sources, v)
	}
	sort.Strings(sources)
	return sources, nil
}

// Count returns the total number of stored chunks from collection
// statistics.
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected row_count %q: %w", stats["row_count"], err)
	}
	return count, nil
}

// Truncate drops and recreates the collection.
func (s *MilvusStore) Truncate(ctx context.Context) error {
	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %q: %w", s.collection, err)
	}
	return s.ensureCollection(ctx)
}

func varcharValue(col entity.Column, idx int) (string, error) {
	vc, ok := col.(*entity.ColumnVarChar)
	if !ok {
		return "", fmt.Errorf("column is not varchar")
	}
	return vc.ValueByIdx(idx)
}

func int64Value(col entity.Column, idx int) (int64, error) {
	ic, ok := col.(*entity.ColumnInt64)
	if !ok {
		return 0, fmt.Errorf("column is not int64")
	}
	return ic.ValueByIdx(idx)
}

// compile-time check to ensure MilvusStore implements VectorStore
var _ interfaces.VectorStore = (*MilvusStore)(nil)
