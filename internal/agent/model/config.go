package model

// ================ Config ================

// ResponseModelConfig configures the tool-calling assistant model.
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

// RAGModelConfig configures the model behind the retrieval answer chain.
// The temperature stays moderate and non-zero: the answers are conversational,
// some variability is fine.
type RAGModelConfig struct {
	Model       string  `envconfig:"RAG_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RAG_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"RAG_TEMPERATURE" default:"0.7"`
}

// RAGConfig configures the retrieval pipeline: source documents, persisted
// index directories, the embedding model, and the search policy.
type RAGConfig struct {
	CatalogPath     string  `envconfig:"RAG_CATALOG_PATH" default:"data/plants.json"`
	PolicyPath      string  `envconfig:"RAG_POLICY_PATH" default:"data/return_policy.md"`
	CatalogIndexDir string  `envconfig:"RAG_CATALOG_INDEX_DIR" default:"plant_embeddings"`
	PolicyIndexDir  string  `envconfig:"RAG_POLICY_INDEX_DIR" default:"policy_embeddings"`
	EmbeddingModel  string  `envconfig:"RAG_EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbedTimeout    int     `envconfig:"RAG_EMBED_TIMEOUT_SECONDS" default:"15"`
	EmbedAttempts   int     `envconfig:"RAG_EMBED_MAX_ATTEMPTS" default:"3"`
	TopK            int     `envconfig:"RAG_TOP_K" default:"5"`
	FetchK          int     `envconfig:"RAG_FETCH_K" default:"15"`
	PolicyTopK      int     `envconfig:"RAG_POLICY_TOP_K" default:"3"`
	Lambda          float64 `envconfig:"RAG_MMR_LAMBDA" default:"0.5"`
}

// ConversationConfig controls history persistence and per-query tool budgets.
type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
	Tools    struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

// PromptConfig parameterizes the assistant system prompt.
type PromptConfig struct {
	StoreName string `envconfig:"PROMPT_STORE_NAME" default:"The Potting Shed"`
}

// ToolsConfig configures the outbound HTTP tools. The order-status key is a
// credential and is threaded through constructors rather than read from the
// environment at call time.
type ToolsConfig struct {
	OrderStatusURL string `envconfig:"ORDER_STATUS_URL" default:"https://mock-order-status.uc.r.appspot.com"`
	OrderStatusKey string `envconfig:"ORDER_STATUS_KEY"`
	PlantSearchURL string `envconfig:"PLANT_SEARCH_URL" default:"https://strong-province-113523.appspot.com"`
	HTTPTimeout    int    `envconfig:"TOOL_HTTP_TIMEOUT_SECONDS" default:"15"`
}
