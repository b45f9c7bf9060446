package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/planthaus/server/internal/rag"
	logx "github.com/planthaus/server/pkg/logger"
)

// msgRAGUnavailable is the generic apology surfaced when retrieval or
// generation fails; the technical detail stays in the logs.
const msgRAGUnavailable = "I'm sorry, I can't look that up right now. Please try again in a moment."

// RAGTool bundles a retriever and its answer chain for one knowledge source.
type RAGTool struct {
	Retriever *rag.Retriever
	Chain     *rag.Chain
}

// Answer is pure delegation: retrieve the top chunks for the question, then
// generate an answer conditioned on them.
func (t *RAGTool) Answer(ctx context.Context, question string) (string, error) {
	results, err := t.Retriever.Retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	return t.Chain.Answer(ctx, question, rag.ResultChunks(results))
}

type KnowledgeQuestionInput struct {
	Question string `json:"question"`
}

// createPlantDetailsTool exposes catalog RAG as an agent tool.
func createPlantDetailsTool(rt *RAGTool) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolPlantDetails,
			Desc: "Answer questions about the houseplants in the store catalog: descriptions, scientific names, and care instructions covering light, water, soil, temperature, humidity, and tips. Use this tool whenever the customer asks about a specific plant or how to look after one.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {
					Type:     "string",
					Desc:     "The customer's question about a plant or its care, in their own words.",
					Required: true,
				},
			}),
		},
		ragToolFunc(ToolPlantDetails, rt),
	)
}

// createReturnPolicyTool exposes return-policy RAG as an agent tool.
func createReturnPolicyTool(rt *RAGTool) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolReturnPolicy,
			Desc: "Answer questions about the store's return policy: eligibility windows, refunds, store credit, and how to return healthy or damaged plants. Use this tool whenever the customer asks about returns, refunds, or exchanges.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {
					Type:     "string",
					Desc:     "The customer's question about returns or refunds, in their own words.",
					Required: true,
				},
			}),
		},
		ragToolFunc(ToolReturnPolicy, rt),
	)
}

func ragToolFunc(name string, rt *RAGTool) func(context.Context, *KnowledgeQuestionInput) (string, error) {
	return func(ctx context.Context, in *KnowledgeQuestionInput) (string, error) {
		if in.Question == "" {
			return "", fmt.Errorf("question is required")
		}
		answer, err := rt.Answer(ctx, in.Question)
		if err != nil {
			logx.Error().Err(err).Str("tool", name).Msg("knowledge lookup failed")
			return msgRAGUnavailable, nil
		}
		return answer, nil
	}
}
