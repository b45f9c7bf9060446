package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/planthaus/server/internal/agent/graph"
	"github.com/planthaus/server/internal/agent/graph/nodes"
	"github.com/planthaus/server/internal/agent/graph/tools"
	"github.com/planthaus/server/internal/agent/model"
	"github.com/planthaus/server/internal/agent/repo"
	"github.com/planthaus/server/internal/core"
	"github.com/planthaus/server/internal/rag"
	logx "github.com/planthaus/server/pkg/logger"
	pkgredis "github.com/planthaus/server/pkg/redis"
)

const goodbyeMessage = "Thanks for chatting today, goodbye!"

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis       pkgredis.Config
	Environment string `envconfig:"APP_ENV" default:"development"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.ResponseModelConfig
	RAGModel     model.RAGModelConfig
	RAG          model.RAGConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Tools        model.ToolsConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", envCfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	// One Gemini client serves the chat models and the embedder.
	client, err := nodes.NewGeminiClient(ctx, envCfg.APIKey, envCfg.BaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	chatModels, err := nodes.NewChatModels(ctx, client, nodes.ChatModelConfig{
		RespConfig: &envCfg.Response,
		RAGConfig:  &envCfg.RAGModel,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat models")
	}

	embedder := rag.NewGeminiEmbedder(client, envCfg.RAG.EmbeddingModel,
		time.Duration(envCfg.RAG.EmbedTimeout)*time.Second)

	catalogRetriever, policyRetriever := buildRetrievers(ctx, embedder, envCfg.RAG)

	chain := rag.NewChain(chatModels.RAG)

	httpTimeout := time.Duration(envCfg.Tools.HTTPTimeout) * time.Second
	toolDeps := tools.Deps{
		Status:       tools.NewStatusClient(envCfg.Tools.OrderStatusURL, envCfg.Tools.OrderStatusKey, httpTimeout),
		PlantSearch:  tools.NewPlantSearchClient(envCfg.Tools.PlantSearchURL, httpTimeout),
		PlantDetails: &tools.RAGTool{Retriever: catalogRetriever, Chain: chain},
		ReturnPolicy: &tools.RAGTool{Retriever: policyRetriever, Chain: chain},
	}

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		ChatModels:       chatModels,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Tools:            toolDeps,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	runREPL(ctx, runner)
}

// buildRetrievers loads the knowledge sources and prepares (or reuses) their
// persisted indexes. A broken knowledge base is a startup failure: the
// assistant is not useful without it.
func buildRetrievers(ctx context.Context, embedder rag.Embedder, cfg model.RAGConfig) (*rag.Retriever, *rag.Retriever) {
	buildCfg := rag.BuildConfig{
		Model:       cfg.EmbeddingModel,
		MaxAttempts: cfg.EmbedAttempts,
	}

	records, err := rag.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logx.Fatal().Str("path", cfg.CatalogPath).Err(err).Msg("Failed to load plant catalog")
	}
	catalogChunks, err := rag.RenderCatalog(records)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to render plant catalog")
	}
	catalogIndex, err := rag.EnsureIndex(ctx, embedder, catalogChunks, cfg.CatalogIndexDir, buildCfg)
	if err != nil {
		logx.Fatal().Str("dir", cfg.CatalogIndexDir).Err(err).Msg("Failed to prepare catalog index")
	}
	logx.Info().Int("chunks", len(catalogChunks)).Str("dir", cfg.CatalogIndexDir).Msg("Catalog index ready")

	policyText, err := rag.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		logx.Fatal().Str("path", cfg.PolicyPath).Err(err).Msg("Failed to load return policy")
	}
	policyChunks := rag.SectionChunks(rag.SplitPolicy(policyText))
	policyIndex, err := rag.EnsureIndex(ctx, embedder, policyChunks, cfg.PolicyIndexDir, buildCfg)
	if err != nil {
		logx.Fatal().Str("dir", cfg.PolicyIndexDir).Err(err).Msg("Failed to prepare policy index")
	}
	logx.Info().Int("chunks", len(policyChunks)).Str("dir", cfg.PolicyIndexDir).Msg("Policy index ready")

	catalogRetriever := rag.NewRetriever(catalogIndex, embedder, rag.SearchConfig{
		K:      cfg.TopK,
		FetchK: cfg.FetchK,
		Lambda: cfg.Lambda,
	})
	policyRetriever := rag.NewRetriever(policyIndex, embedder, rag.SearchConfig{
		K:      cfg.PolicyTopK,
		FetchK: cfg.FetchK,
		Lambda: cfg.Lambda,
	})
	return catalogRetriever, policyRetriever
}

// runREPL drives the interactive loop. Each process run is one conversation;
// an empty line ends it.
func runREPL(ctx context.Context, runner graph.Runner) {
	conversationID := uuid.NewString()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome! How can I help you with your houseplants today?")
	fmt.Println("(press Enter on an empty line to quit)")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			fmt.Println(goodbyeMessage)
			return
		}

		response, err := runner.Invoke(ctx, model.QueryInput{
			ConversationID: conversationID,
			Query:          query,
		})
		if err != nil {
			logx.Error().Err(err).Msg("Query failed")
			fmt.Println("Sorry, something went wrong. Please try again.")
			continue
		}

		fmt.Println(response)
	}

	if err := scanner.Err(); err != nil {
		logx.Error().Err(err).Msg("Input error")
	}
	fmt.Println(goodbyeMessage)
}
