package assembler

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

const (
	// DefaultSystemPromptTokens is the share of the budget reserved for the
	// fixed instruction text around the context.
	DefaultSystemPromptTokens = 150
	// DefaultAnswerReserveTokens is the share of the budget reserved for the
	// model's answer.
	DefaultAnswerReserveTokens = 500
	// MinBudget is the floor for the context budget after reservations.
	MinBudget = 500

	separator = "\n\n---\n\n"
)

// ContextAssembler packs ranked chunks into a token-budgeted context string
// while preserving source attribution in chunk headers.
type ContextAssembler struct {
	MaxContextTokens    int
	SystemPromptTokens  int
	AnswerReserveTokens int
	tokenizer           *tiktoken.Tiktoken
}

// Result describes an assembled context.
type Result struct {
	Context    string
	UsedTokens int
	// Included is the number of chunks that made it into the context.
	Included int
}

// New creates a ContextAssembler with the default reservations.
func New(maxContextTokens int) (*ContextAssembler, error) {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &ContextAssembler{
		MaxContextTokens:    maxContextTokens,
		SystemPromptTokens:  DefaultSystemPromptTokens,
		AnswerReserveTokens: DefaultAnswerReserveTokens,
		tokenizer:           tke,
	}, nil
}

// Budget computes the token budget available for chunk bodies once the
// question, the system prompt and the answer reservation are accounted for.
// It never drops below MinBudget.
func (a *ContextAssembler) Budget(question string) int {
	reserved := a.countTokens(question) + a.SystemPromptTokens + a.AnswerReserveTokens
	budget := a.MaxContextTokens - reserved
	if budget < MinBudget {
		return MinBudget
	}
	return budget
}

// Assemble packs chunks, in the order given, into a context string whose
// chunk bodies total at most Budget(question) tokens. Chunks are taken whole;
// a chunk that does not fit ends the packing. If even the first chunk does
// not fit it is truncated to the budget so the context is never empty when
// chunks were retrieved.
func (a *ContextAssembler) Assemble(question string, chunks []*schema.Document) *Result {
	if len(chunks) == 0 {
		return &Result{}
	}

	available := a.Budget(question)

	var parts []string
	used := 0

	for _, chunk := range chunks {
		tokens := chunk.TokenCount
		if tokens == 0 {
			tokens = a.countTokens(chunk.Text)
		}

		if used+tokens > available {
			if len(parts) == 0 {
				remaining := available - used
				content := a.truncate(chunk.Text, remaining)
				parts = append(parts, formatChunk(chunk, content))
				used += a.countTokens(content)
			}
			break
		}

		parts = append(parts, formatChunk(chunk, chunk.Text))
		used += tokens
	}

	return &Result{
		Context:    strings.Join(parts, separator),
		UsedTokens: used,
		Included:   len(parts),
	}
}

// formatChunk prefixes the chunk body with an attribution header so the
// model can cite where a statement came from.
func formatChunk(chunk *schema.Document, content string) string {
	source := chunk.Source
	if source == "" {
		source = "unknown"
	}

	header := fmt.Sprintf("[%s | Chunk %d", source, chunk.Ordinal)
	if chunk.Similarity > 0 {
		header += fmt.Sprintf(" | Similarity %.3f", chunk.Similarity)
	}
	header += "]"

	return header + "\n" + content
}

// truncate cuts text so that it stays within maxTokens, ellipsis marker
// included. Decoding a token prefix and re-encoding it with the marker can
// shift the count by a token, so the cut backs off until the result fits.
func (a *ContextAssembler) truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := a.tokenizer.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	for cut := maxTokens - 1; cut > 0; cut-- {
		candidate := a.tokenizer.Decode(tokens[:cut]) + "..."
		if a.countTokens(candidate) <= maxTokens {
			return candidate
		}
	}
	return ""
}

func (a *ContextAssembler) countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(a.tokenizer.Encode(text, nil, nil))
}
