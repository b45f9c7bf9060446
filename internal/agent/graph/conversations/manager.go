package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/planthaus/server/internal/agent/model"
)

// MessagesManager mediates between the graph and the conversation repository:
// it records turns and assembles the windowed message context for the model.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         config.MaxTurns,
	}
}

// RecordUserMessage persists the incoming user turn.
func (cm *MessagesManager) RecordUserMessage(ctx context.Context, conversationID string, query string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query))
}

// BuildContext returns [system prompt, recent history...] for the response
// model. History is windowed to the configured number of recent messages so
// long conversations cannot overflow the model context.
func (cm *MessagesManager) BuildContext(ctx context.Context, conversationID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]*schema.Message, 0, len(history.Messages)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, trimTail(history.Messages, cm.maxTurns)...)

	return messages, nil
}

// SaveResponse persists the assistant's final turn.
func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// trimTail keeps the most recent maxTurns messages, returning a copy so
// callers can append without aliasing the repository's slice.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
