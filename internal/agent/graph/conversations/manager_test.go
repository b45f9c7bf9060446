package conversations

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/planthaus/server/internal/agent/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-process ConversationRepository for tests.
type memoryRepo struct {
	messages map[string][]*schema.Message
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: make(map[string][]*schema.Message)}
}

func (r *memoryRepo) AddMessage(_ context.Context, id string, m *schema.Message) error {
	r.messages[id] = append(r.messages[id], m)
	return nil
}

func (r *memoryRepo) LoadHistory(_ context.Context, id string) (*model.ConversationHistory, error) {
	return &model.ConversationHistory{ConversationID: id, Messages: r.messages[id]}, nil
}

func (r *memoryRepo) ClearHistory(_ context.Context, id string) error {
	delete(r.messages, id)
	return nil
}

func (r *memoryRepo) GetMessageCount(_ context.Context, id string) (int, error) {
	return len(r.messages[id]), nil
}

func newManager(repo model.ConversationRepository, maxTurns int) *MessagesManager {
	cfg := model.ConversationConfig{MaxTurns: maxTurns}
	return NewMessagesManager(repo, cfg)
}

func TestRecordAndBuildContext(t *testing.T) {
	repo := newMemoryRepo()
	mm := newManager(repo, 20)
	ctx := context.Background()

	require.NoError(t, mm.RecordUserMessage(ctx, "conv-1", "Do you sell ferns?"))
	require.NoError(t, mm.SaveResponse(ctx, "conv-1", "We do, several varieties."))

	msgs, err := mm.BuildContext(ctx, "conv-1", "system prompt")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "system prompt", msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "Do you sell ferns?", msgs[1].Content)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
}

func TestBuildContextWindowsHistory(t *testing.T) {
	repo := newMemoryRepo()
	mm := newManager(repo, 4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, mm.RecordUserMessage(ctx, "conv-1", fmt.Sprintf("message %d", i)))
	}

	msgs, err := mm.BuildContext(ctx, "conv-1", "system")
	require.NoError(t, err)
	require.Len(t, msgs, 5) // system + 4 most recent

	assert.Equal(t, "message 6", msgs[1].Content)
	assert.Equal(t, "message 9", msgs[4].Content)
}

func TestTrimTailCopies(t *testing.T) {
	original := []*schema.Message{schema.UserMessage("a"), schema.UserMessage("b")}
	trimmed := trimTail(original, 10)

	require.Len(t, trimmed, 2)
	trimmed[0] = schema.UserMessage("mutated")
	assert.Equal(t, "a", original[0].Content)
}
