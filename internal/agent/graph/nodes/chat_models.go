package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	logx "github.com/planthaus/server/pkg/logger"
	"google.golang.org/genai"

	"github.com/planthaus/server/internal/agent/model"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	RespConfig *model.ResponseModelConfig
	RAGConfig  *model.RAGModelConfig
}

// ChatModels holds the tool-calling response model and the RAG answer model.
// Both share one genai client; the RAG model runs at a higher temperature and
// never gets tools bound.
type ChatModels struct {
	Response          *gemini.ChatModel
	RAG               *gemini.ChatModel
	ResponseModelName string
}

// NewGeminiClient creates the shared Gemini API client used by the chat
// models and the embedding service.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModels creates both chat models on the given client.
func NewChatModels(ctx context.Context, client *genai.Client, config ChatModelConfig) (*ChatModels, error) {
	chatModelResponse, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.RespConfig.Model,
		Temperature: &config.RespConfig.Temperature,
		MaxTokens:   &config.RespConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	chatModelRAG, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.RAGConfig.Model,
		Temperature: &config.RAGConfig.Temperature,
		MaxTokens:   &config.RAGConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating RAG model")
		return nil, fmt.Errorf("error creating RAG model: %w", err)
	}

	return &ChatModels{
		Response:          chatModelResponse,
		RAG:               chatModelRAG,
		ResponseModelName: config.RespConfig.Model,
	}, nil
}

// BindToolsToResponseModel binds tools to the response chat model.
func (cm *ChatModels) BindToolsToResponseModel(_ context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Response.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Msg("Successfully bound tools to response model")
	return nil
}

// NewResponseChatModelNode creates a wrapper for the response chat model to be used as a node.
func NewResponseChatModelNode(chatModel *gemini.ChatModel) *gemini.ChatModel {
	return chatModel
}
