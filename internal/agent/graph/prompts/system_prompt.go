package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/planthaus/server/internal/agent/graph/tools"
	"github.com/planthaus/server/internal/agent/model"
)

//go:embed template/system_prompt.txt
var assistantSystemPrompt string

// RenderAssistantSystem renders the store-assistant system prompt and triggers
// prompt callbacks via the Eino prompt component.
func RenderAssistantSystem(ctx context.Context, config model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(assistantSystemPrompt),
	)
	vars := map[string]any{
		"StoreName":        config.StoreName,
		"PlantDetailsTool": tools.ToolPlantDetails,
		"ReturnPolicyTool": tools.ToolReturnPolicy,
		"OrderStatusTool":  tools.ToolGetOrderStatus,
		"SearchPlantsTool": tools.ToolSearchPlants,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
