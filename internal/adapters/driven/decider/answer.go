package decider

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure AnswerGenerator implements the interface.
var _ driven.AnswerGenerator = (*AnswerGenerator)(nil)

// Answer generation defaults.
const (
	answerSystem      = "You are a helpful assistant that answers questions based on document data."
	answerMaxTokens   = 4000
	answerTemperature = 0.7
)

// AnswerGenerator writes the final answer from the gathered evidence.
type AnswerGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAnswerGenerator creates an answer generator. prompts may be nil.
func NewAnswerGenerator(llm driven.LLMService, prompts driven.PromptStore) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, prompts: prompts}
}

// Generate returns the model's answer with surrounding whitespace removed.
func (g *AnswerGenerator) Generate(ctx context.Context, question, evidence string) (string, error) {
	prompt := fmt.Sprintf(loadPrompt(g.prompts, driven.PromptAnswer), question, evidence)

	reply, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: answerSystem},
		{Role: "user", Content: prompt},
	}, driven.ChatOptions{MaxTokens: answerMaxTokens, Temperature: answerTemperature})
	if err != nil {
		return "", fmt.Errorf("%w: generate answer: %w", domain.ErrExternalService, err)
	}
	return strings.TrimSpace(reply), nil
}
