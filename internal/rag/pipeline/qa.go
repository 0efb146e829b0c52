package pipeline

import (
	"context"
	"fmt"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

// promptTemplate is the instruction-tuned prompt for Mistral-style models.
// The instruction to stay within the context keeps the model from inventing
// facts that are not in the ingested documents.
const promptTemplate = `<s>[INST] You are a helpful assistant. Answer the question based on the provided context.

Context:
%s

Question: %s

Answer based only on the context provided. If the answer is not in the context, say so. [/INST]
`

// QAPipeline generates an answer from a question and its assembled context.
type QAPipeline struct {
	llm         interfaces.LLM
	maxTokens   int
	temperature float32
	log         *logger.Logger
}

// NewQAPipeline creates a new QAPipeline with fixed sampling parameters.
func NewQAPipeline(llm interfaces.LLM, maxTokens int, temperature float32, log *logger.Logger) *QAPipeline {
	return &QAPipeline{
		llm:         llm,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         log,
	}
}

// Run builds the prompt and calls the LLM.
func (p *QAPipeline) Run(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(question, contextText)

	answer, err := p.llm.Generate(ctx, &interfaces.GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to generate answer: %v", err))
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	p.log.Info(fmt.Sprintf("Generated answer (%d chars)", len(answer)))
	return answer, nil
}

// BuildPrompt formats the question and context into the generation prompt.
func BuildPrompt(question, contextText string) string {
	return fmt.Sprintf(promptTemplate, contextText, question)
}
