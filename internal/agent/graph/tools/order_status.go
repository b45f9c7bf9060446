package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	logx "github.com/planthaus/server/pkg/logger"
)

// User-facing error payload messages for the order-status tool. The agent
// relays these conversationally, so they are descriptive but non-technical.
const (
	msgOrderStatusAuth = "Missing or incorrect API key"
	msgOrderStatusAPI  = "Error calling order status API"
	msgOrderStatusConn = "Error connecting to API"
)

type GetOrderStatusInput struct {
	OrderNumber int `json:"order_number"`
}

// createGetOrderStatusTool wraps the status client as an agent tool. Failures
// never propagate as errors: the tool hands the agent a structured {error}
// payload it can phrase for the user.
func createGetOrderStatusTool(client *StatusClient) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetOrderStatus,
			Desc: "Fetch the order details and status for the given order number. Returns the products ordered, the price and quantity of each, the order date, and the order status; delivered orders include the delivery date. If the order cannot be fetched, returns an object with a single \"error\" key describing the problem.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_number": {
					Type:     "number",
					Desc:     "The customer's order number, e.g. 1234.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetOrderStatusInput) (map[string]any, error) {
			if in.OrderNumber <= 0 {
				return nil, fmt.Errorf("order_number is required")
			}

			order, err := client.OrderStatus(ctx, in.OrderNumber)
			if err != nil {
				logx.Warn().Err(err).Int("order_number", in.OrderNumber).Msg("order status lookup failed")
				switch {
				case errors.Is(err, ErrAuthentication):
					return map[string]any{"error": msgOrderStatusAuth}, nil
				case errors.Is(err, ErrConnectivity):
					return map[string]any{"error": msgOrderStatusConn}, nil
				default:
					return map[string]any{"error": msgOrderStatusAPI}, nil
				}
			}
			return order, nil
		},
	)
}
