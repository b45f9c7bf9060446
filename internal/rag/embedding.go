package rag

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Embedder converts texts into fixed-dimension vectors. Implementations must
// return one vector per input text, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder calls the Gemini embedding API through the shared genai
// client. Every call carries its own deadline so a slow service cannot stall
// an entire conversational turn.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

const defaultEmbedTimeout = 15 * time.Second

func NewGeminiEmbedder(client *genai.Client, model string, timeout time.Duration) *GeminiEmbedder {
	if timeout <= 0 {
		timeout = defaultEmbedTimeout
	}
	return &GeminiEmbedder{client: client, model: model, timeout: timeout}
}

// Model returns the embedding model name, recorded in index manifests so a
// persisted index is never served with a mismatched query embedder.
func (e *GeminiEmbedder) Model() string {
	return e.model
}

func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingService, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, 0, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at position %d", ErrEmbeddingService, i)
		}
		vectors = append(vectors, emb.Values)
	}
	return vectors, nil
}
