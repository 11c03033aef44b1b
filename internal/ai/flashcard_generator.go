package ai

import (
	"context"
	"fmt"
)

const flashcardPrompt = "Generate exactly 5 question-and-answer pairs based on the following text. " +
	"Format the response exactly as: Q1: [question]? A1: [answer]. Q2: [question]? A2: [answer]. " +
	"Continue this pattern for all 5 pairs.\n\nText: %s"

// FlashcardGenerator wraps the chat-completion client with the fixed
// five-pair instructional prompt.
type FlashcardGenerator struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewFlashcardGenerator(cfg ChatConfig) *FlashcardGenerator {
	return &FlashcardGenerator{
		client: NewOpenAICompatibleClient(),
		cfg:    cfg,
	}
}

// GenerateCards returns the raw model output, expected to loosely match
// the "Q<n>: ...? A<n>: ..." pattern the parser scans for.
func (g *FlashcardGenerator) GenerateCards(ctx context.Context, text string) (string, error) {
	messages := []ChatMessage{
		{
			Role:    "system",
			Content: "You turn study notes into flashcards. Follow the requested format exactly.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf(flashcardPrompt, text),
		},
	}
	return g.client.Complete(ctx, g.cfg, messages)
}
