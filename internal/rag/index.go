package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// entry is one indexed chunk with its embedding vector.
type entry struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// manifest describes a persisted index so a reload can verify it was built
// with the same embedding model over the same chunk set.
type manifest struct {
	Model       string `json:"model"`
	Dimension   int    `json:"dimension"`
	Count       int    `json:"count"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
}

const (
	manifestFile = "manifest.json"
	entriesFile  = "entries.json"
)

// Index is the read-mostly vector index over a chunk set. It is built once
// (all entries share the same embedding dimension) and safe for concurrent
// searches afterwards.
type Index struct {
	model       string
	dim         int
	fingerprint string
	entries     []entry
}

// Result is one search hit: the chunk and its relevance to the query.
type Result struct {
	Chunk Chunk
	Score float64
}

// BuildConfig controls index construction. Zero values fall back to defaults.
type BuildConfig struct {
	Model        string
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

const (
	defaultBatchSize    = 32
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

func (c BuildConfig) withDefaults() BuildConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	return c
}

// BuildIndex embeds every chunk and assembles the index. Embedding calls are
// batched and retried with exponential backoff; if any batch fails after the
// retries run out the whole build fails, because a partial index would
// silently degrade search recall.
func BuildIndex(ctx context.Context, emb Embedder, chunks []Chunk, cfg BuildConfig) (*Index, error) {
	cfg = cfg.withDefaults()

	seen := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate chunk id %q", ErrParse, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	ix := &Index{
		model:       cfg.Model,
		fingerprint: Fingerprint(chunks),
		entries:     make([]entry, 0, len(chunks)),
	}

	for start := 0; start < len(chunks); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := embedWithRetry(ctx, emb, texts, cfg.MaxAttempts, cfg.RetryBackoff)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d..%d: %w", start, end-1, err)
		}

		for i, vec := range vectors {
			if ix.dim == 0 {
				ix.dim = len(vec)
			}
			if len(vec) != ix.dim {
				return nil, fmt.Errorf("%w: dimension %d for chunk %q, index uses %d",
					ErrEmbeddingService, len(vec), batch[i].ID, ix.dim)
			}
			ix.entries = append(ix.entries, entry{
				ID:       batch[i].ID,
				Text:     batch[i].Text,
				Vector:   vec,
				Metadata: batch[i].Metadata,
			})
		}
	}

	return ix, nil
}

// embedWithRetry retries transient embedding failures with doubling backoff.
func embedWithRetry(ctx context.Context, emb Embedder, texts []string, attempts int, backoff time.Duration) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		vectors, err := emb.EmbedTexts(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Model returns the embedding model the index was built with.
func (ix *Index) Model() string {
	return ix.model
}

// SearchParams control one similarity search. FetchK candidates are ranked by
// cosine similarity, then maximal marginal relevance reduces them to K,
// trading a little raw relevance for topical coverage. Lambda weighs
// relevance against diversity; 1 disables the diversity term.
type SearchParams struct {
	K      int
	FetchK int
	Lambda float64
}

// Search embeds the query with the same embedder the index was built with and
// returns up to K diversity-ranked results. K=0 and an empty index both yield
// an empty result rather than an error.
func (ix *Index) Search(ctx context.Context, emb Embedder, query string, p SearchParams) ([]Result, error) {
	if p.K < 0 || p.FetchK < 0 {
		return nil, fmt.Errorf("%w: negative k or fetch_k", ErrInvalidSearchConfig)
	}
	if p.FetchK < p.K {
		return nil, fmt.Errorf("%w: fetch_k %d < k %d", ErrInvalidSearchConfig, p.FetchK, p.K)
	}
	if p.K == 0 || len(ix.entries) == 0 {
		return []Result{}, nil
	}

	vectors, err := emb.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected one query embedding, got %d", ErrEmbeddingService, len(vectors))
	}
	queryVec := vectors[0]
	if len(queryVec) != ix.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index uses %d", ErrEmbeddingService, len(queryVec), ix.dim)
	}

	type scored struct {
		idx       int
		relevance float64
	}
	candidates := make([]scored, 0, len(ix.entries))
	for i := range ix.entries {
		candidates = append(candidates, scored{idx: i, relevance: cosineSimilarity(queryVec, ix.entries[i].Vector)})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].relevance > candidates[b].relevance
	})
	if len(candidates) > p.FetchK {
		candidates = candidates[:p.FetchK]
	}

	// Maximal marginal relevance: iteratively pick the candidate maximizing
	// lambda*relevance - (1-lambda)*max similarity to anything already picked.
	var picked []scored
	remaining := candidates
	for len(picked) < p.K && len(remaining) > 0 {
		bestPos := 0
		bestScore := math.Inf(-1)
		for pos, cand := range remaining {
			redundancy := 0.0
			for _, sel := range picked {
				sim := cosineSimilarity(ix.entries[cand.idx].Vector, ix.entries[sel.idx].Vector)
				if sim > redundancy {
					redundancy = sim
				}
			}
			score := p.Lambda*cand.relevance - (1-p.Lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}
		picked = append(picked, remaining[bestPos])
		remaining = append(remaining[:bestPos:bestPos], remaining[bestPos+1:]...)
	}

	results := make([]Result, 0, len(picked))
	for _, s := range picked {
		e := ix.entries[s.idx]
		results = append(results, Result{
			Chunk: Chunk{ID: e.ID, Text: e.Text, Metadata: e.Metadata},
			Score: s.relevance,
		})
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Save persists the index to a directory as a manifest plus entries file.
// Rebuilding from the same chunk set and model yields a directory that loads
// to equivalent search behavior.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir %s: %w", dir, err)
	}

	m := manifest{
		Model:       ix.model,
		Dimension:   ix.dim,
		Count:       len(ix.entries),
		Fingerprint: ix.fingerprint,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(filepath.Join(dir, manifestFile), m); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, entriesFile), ix.entries)
}

// LoadIndex reads a persisted index back from disk, validating that every
// entry matches the manifest dimension.
func LoadIndex(dir string) (*Index, error) {
	var m manifest
	if err := readJSON(filepath.Join(dir, manifestFile), &m); err != nil {
		return nil, err
	}
	var entries []entry
	if err := readJSON(filepath.Join(dir, entriesFile), &entries); err != nil {
		return nil, err
	}

	if len(entries) != m.Count {
		return nil, fmt.Errorf("%w: manifest count %d, found %d entries", ErrParse, m.Count, len(entries))
	}
	for _, e := range entries {
		if len(e.Vector) != m.Dimension {
			return nil, fmt.Errorf("%w: entry %q has dimension %d, manifest says %d", ErrParse, e.ID, len(e.Vector), m.Dimension)
		}
	}

	return &Index{
		model:       m.Model,
		dim:         m.Dimension,
		fingerprint: m.Fingerprint,
		entries:     entries,
	}, nil
}

// EnsureIndex reuses a persisted index when it matches the configured model
// and the fingerprint of the current chunk set; otherwise it rebuilds from
// scratch and persists the result. Build failures are returned as-is so
// startup can fail rather than serve a stale or partial index.
func EnsureIndex(ctx context.Context, emb Embedder, chunks []Chunk, dir string, cfg BuildConfig) (*Index, error) {
	if existing, err := LoadIndex(dir); err == nil {
		if existing.model == cfg.Model && existing.fingerprint == Fingerprint(chunks) {
			return existing, nil
		}
	}

	ix, err := BuildIndex(ctx, emb, chunks, cfg)
	if err != nil {
		return nil, err
	}
	if err := ix.Save(dir); err != nil {
		return nil, err
	}
	return ix, nil
}

// Fingerprint hashes the chunk ids and texts so index reuse can detect a
// changed source dataset.
func Fingerprint(chunks []Chunk) string {
	h := sha256.New()
	for _, c := range chunks {
		h.Write([]byte(c.ID))
		h.Write([]byte{0})
		h.Write([]byte(c.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return nil
}
