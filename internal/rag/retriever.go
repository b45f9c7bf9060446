package rag

import "context"

// SearchConfig is the fixed search policy a Retriever applies to every query.
type SearchConfig struct {
	K      int
	FetchK int
	Lambda float64
}

// Catalog search defaults; the same values the store assistant has always
// used for plant lookups.
const (
	DefaultTopK   = 5
	DefaultFetchK = 15
	DefaultLambda = 0.5
)

func (c SearchConfig) withDefaults() SearchConfig {
	if c.K == 0 {
		c.K = DefaultTopK
	}
	if c.FetchK == 0 {
		c.FetchK = DefaultFetchK
	}
	if c.Lambda == 0 {
		c.Lambda = DefaultLambda
	}
	return c
}

// Retriever wraps an index and its embedder with a fixed search policy.
type Retriever struct {
	index    *Index
	embedder Embedder
	cfg      SearchConfig
}

func NewRetriever(index *Index, embedder Embedder, cfg SearchConfig) *Retriever {
	return &Retriever{index: index, embedder: embedder, cfg: cfg.withDefaults()}
}

// Retrieve returns the diversity-ranked top chunks for the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	return r.index.Search(ctx, r.embedder, query, SearchParams{
		K:      r.cfg.K,
		FetchK: r.cfg.FetchK,
		Lambda: r.cfg.Lambda,
	})
}

// ResultChunks strips scores from results for callers that only need text.
func ResultChunks(results []Result) []Chunk {
	chunks := make([]Chunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, res.Chunk)
	}
	return chunks
}
