package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Tool names, referenced by the system prompt and argument sanitization.
const (
	ToolGetOrderStatus = "get_order_status"
	ToolSearchPlants   = "search_plants"
	ToolPlantDetails   = "plant_details"
	ToolReturnPolicy   = "return_policy"
)

// Deps carries the collaborators every tool needs. The RAG tools are optional
// so a deployment can run without one of the knowledge sources.
type Deps struct {
	Status       *StatusClient
	PlantSearch  *PlantSearchClient
	PlantDetails *RAGTool
	ReturnPolicy *RAGTool
}

// GetQueryTools assembles the business tools offered to the agent.
func GetQueryTools(d Deps) []tool.BaseTool {
	var out []tool.BaseTool
	if d.Status != nil {
		out = append(out, createGetOrderStatusTool(d.Status))
	}
	if d.PlantSearch != nil {
		out = append(out, createSearchPlantsTool(d.PlantSearch))
	}
	if d.PlantDetails != nil {
		out = append(out, createPlantDetailsTool(d.PlantDetails))
	}
	if d.ReturnPolicy != nil {
		out = append(out, createReturnPolicyTool(d.ReturnPolicy))
	}
	return out
}

// GetToolInfos collects the ToolInfo of every tool for model binding.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
