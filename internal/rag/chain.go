package rag

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/answer_prompt.txt
var answerPrompt string

// Chain assembles retrieved context and a question into one prompt and asks
// the generation model for an answer. The instruction pins the model to the
// provided context; when the context is insufficient the expected reply is
// "I don't know".
type Chain struct {
	model model.BaseChatModel
}

func NewChain(cm model.BaseChatModel) *Chain {
	return &Chain{model: cm}
}

// Answer generates a reply to the question from the given context chunks.
// Generation failures surface as ErrGeneration; a fabricated answer is never
// substituted.
func (c *Chain) Answer(ctx context.Context, question string, chunks []Chunk) (string, error) {
	var b strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(ch.Text)
	}

	// Render via the eino prompt component so prompt callbacks fire.
	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(answerPrompt))
	msgs, err := tpl.Format(ctx, map[string]any{
		"context":  b.String(),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}

	out, err := c.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: empty model response", ErrGeneration)
	}
	return strings.TrimSpace(out.Content), nil
}
