package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contextOnlyInstruction = "using only the context provided"

// scriptedModel is a BaseChatModel whose reply is computed from the prompt it
// received, so tests can verify what the chain actually sent.
type scriptedModel struct {
	lastMessages []*schema.Message
	replyFn      func(prompt string) string
	err          error
}

func (m *scriptedModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.lastMessages = msgs
	if m.err != nil {
		return nil, m.err
	}
	prompt := ""
	if len(msgs) > 0 && msgs[len(msgs)-1] != nil {
		prompt = msgs[len(msgs)-1].Content
	}
	return schema.AssistantMessage(m.replyFn(prompt), nil), nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func TestChainPromptContainsInstructionContextAndQuestion(t *testing.T) {
	cm := &scriptedModel{replyFn: func(string) string { return "ok" }}
	chain := NewChain(cm)

	chunks := []Chunk{
		{ID: "plant-001", Text: "Plant name: Monstera"},
		{ID: "plant-002", Text: "Plant name: Pothos"},
	}
	_, err := chain.Answer(context.Background(), "Which plant likes shade?", chunks)
	require.NoError(t, err)

	require.Len(t, cm.lastMessages, 1)
	prompt := cm.lastMessages[0].Content
	assert.Contains(t, prompt, contextOnlyInstruction)
	assert.Contains(t, prompt, "Plant name: Monstera")
	assert.Contains(t, prompt, "Plant name: Pothos")
	assert.Contains(t, prompt, "Question: Which plant likes shade?")
	assert.Equal(t, schema.User, cm.lastMessages[0].Role)
}

// A generation service that honors the instruction answers "I don't know"
// when the context is irrelevant; the chain must pass that through untouched.
func TestChainInsufficientContext(t *testing.T) {
	cm := &scriptedModel{replyFn: func(prompt string) string {
		if strings.Contains(prompt, contextOnlyInstruction) {
			return "I don't know"
		}
		return "fabricated answer"
	}}
	chain := NewChain(cm)

	answer, err := chain.Answer(context.Background(), "What is the shipping cost?", []Chunk{
		{ID: "plant-001", Text: "Plant name: Monstera"},
	})
	require.NoError(t, err)
	assert.Contains(t, answer, "I don't know")
}

func TestChainTrimsResponse(t *testing.T) {
	cm := &scriptedModel{replyFn: func(string) string { return "\n  A monstera.  \n" }}
	chain := NewChain(cm)

	answer, err := chain.Answer(context.Background(), "What plant?", []Chunk{{ID: "x", Text: "Monstera"}})
	require.NoError(t, err)
	assert.Equal(t, "A monstera.", answer)
}

func TestChainPropagatesGenerationFailure(t *testing.T) {
	cm := &scriptedModel{err: errors.New("upstream unavailable")}
	chain := NewChain(cm)

	_, err := chain.Answer(context.Background(), "What plant?", []Chunk{{ID: "x", Text: "Monstera"}})
	assert.ErrorIs(t, err, ErrGeneration)
}
