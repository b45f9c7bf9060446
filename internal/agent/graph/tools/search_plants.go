package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	logx "github.com/planthaus/server/pkg/logger"
)

const msgPlantSearchFailed = "Error calling plant search API"

type SearchPlantsInput struct {
	MinPrice  float64 `json:"min_price,omitempty"`
	MaxPrice  float64 `json:"max_price,omitempty"`
	CareLevel string  `json:"care_level,omitempty"`
}

// createSearchPlantsTool wraps the plant-search client as an agent tool.
// A successful search returns the service's JSON list verbatim; any failure
// collapses to a single error string the agent can relay.
func createSearchPlantsTool(client *PlantSearchClient) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchPlants,
			Desc: "Search the store inventory for plants by price range and care level. Returns a JSON list of matching plants with name and price. Use this tool when the customer wants to browse or filter plants rather than ask about a specific one.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"min_price": {
					Type: "number",
					Desc: "Minimum price in dollars.",
				},
				"max_price": {
					Type: "number",
					Desc: "Maximum price in dollars.",
				},
				"care_level": {
					Type: "string",
					Desc: "Care level filter: easy, medium or difficult. Multiple levels can be combined separated by ';', e.g. \"easy;medium\".",
				},
			}),
		},
		func(ctx context.Context, in *SearchPlantsInput) (any, error) {
			plants, err := client.Search(ctx, PlantSearchQuery{
				MinPrice:  in.MinPrice,
				MaxPrice:  in.MaxPrice,
				CareLevel: in.CareLevel,
			})
			if err != nil {
				logx.Warn().Err(err).Msg("plant search failed")
				return msgPlantSearchFailed, nil
			}
			return plants, nil
		},
	)
}
