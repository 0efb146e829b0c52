package splitters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// TokenSplitter implements the Splitter interface by cutting documents into
// overlapping windows of tokens.
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	tokenizer    *tiktoken.Tiktoken
}

// NewTokenSplitter creates a TokenSplitter. chunkSize is the target token
// count per chunk and chunkOverlap the number of tokens shared between
// consecutive chunks of the same source.
func NewTokenSplitter(chunkSize, chunkOverlap int) (*TokenSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", chunkOverlap)
	}

	// cl100k_base is the tokenizer for gpt-4, gpt-3.5-turbo and
	// text-embedding-ada-002; a close enough proxy for budget accounting
	// with other models.
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		tokenizer:    tke,
	}, nil
}

// CountTokens returns the number of tokens in text.
func (s *TokenSplitter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(s.tokenizer.Encode(text, nil, nil))
}

// Split cuts each document into chunks of at most ChunkSize tokens, with
// consecutive chunks of one document sharing ChunkOverlap tokens. Documents
// with no content produce no chunks. The result is deterministic for a fixed
// input and configuration, except for the generated chunk IDs.
func (s *TokenSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document
	// Ordinals run across all documents of one source, so multi-page files
	// keep unique chunk numbers.
	ordinals := make(map[string]int)

	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}

		tokens := s.tokenizer.Encode(doc.Text, nil, nil)
		step := s.ChunkSize - s.ChunkOverlap
		ordinal := ordinals[doc.Source]

		for start := 0; start < len(tokens); start += step {
			end := start + s.ChunkSize
			if end > len(tokens) {
				end = len(tokens)
			}

			chunk := &schema.Document{
				ID:         uuid.New().String(),
				Source:     doc.Source,
				Ordinal:    ordinal,
				Text:       s.tokenizer.Decode(tokens[start:end]),
				StartToken: start,
				EndToken:   end,
				TokenCount: end - start,
				Metadata:   doc.CloneMetadata(),
			}
			chunks = append(chunks, chunk)
			ordinal++

			if end == len(tokens) {
				break
			}
		}
		ordinals[doc.Source] = ordinal
	}

	return chunks, nil
}

// compile-time check to ensure TokenSplitter implements the Splitter interface
var _ interfaces.Splitter = (*TokenSplitter)(nil)
