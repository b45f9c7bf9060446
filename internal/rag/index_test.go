package rag

import (
	"context"
	"fmt"
	"hash/fnv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns fixed vectors for known texts and a deterministic
// hash-derived vector otherwise, so builds and searches are repeatable.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.vectors[t]; ok {
			out[i] = v
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(t))
		sum := h.Sum32()
		out[i] = []float32{
			float32(sum%97) / 97,
			float32(sum%89) / 89,
			float32(sum%83) / 83,
		}
	}
	return out, nil
}

// flakyEmbedder fails a fixed number of times before delegating.
type flakyEmbedder struct {
	failures int
	inner    Embedder
	attempts int
}

func (f *flakyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, fmt.Errorf("%w: transient failure", ErrEmbeddingService)
	}
	return f.inner.EmbedTexts(ctx, texts)
}

func testChunks(n int) []Chunk {
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("plant-%03d", i),
			Text: fmt.Sprintf("Plant name: Specimen %d", i),
		})
	}
	return chunks
}

func fastBuild() BuildConfig {
	return BuildConfig{Model: "test-embedding", RetryBackoff: time.Millisecond}
}

func TestBuildIndex(t *testing.T) {
	emb := &stubEmbedder{}
	ix, err := BuildIndex(context.Background(), emb, testChunks(5), fastBuild())
	require.NoError(t, err)

	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, "test-embedding", ix.Model())
}

func TestBuildIndexBatches(t *testing.T) {
	emb := &stubEmbedder{}
	cfg := fastBuild()
	cfg.BatchSize = 2

	ix, err := BuildIndex(context.Background(), emb, testChunks(5), cfg)
	require.NoError(t, err)

	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, 3, emb.calls)
}

func TestBuildIndexRejectsDuplicateIDs(t *testing.T) {
	chunks := []Chunk{
		{ID: "plant-001", Text: "first"},
		{ID: "plant-001", Text: "second"},
	}

	_, err := BuildIndex(context.Background(), &stubEmbedder{}, chunks, fastBuild())
	assert.ErrorIs(t, err, ErrParse)
}

func TestBuildIndexRetriesTransientFailures(t *testing.T) {
	emb := &flakyEmbedder{failures: 2, inner: &stubEmbedder{}}

	ix, err := BuildIndex(context.Background(), emb, testChunks(3), fastBuild())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 3, emb.attempts)
}

func TestBuildIndexFailsAfterExhaustedRetries(t *testing.T) {
	emb := &flakyEmbedder{failures: 99, inner: &stubEmbedder{}}

	_, err := BuildIndex(context.Background(), emb, testChunks(3), fastBuild())
	assert.ErrorIs(t, err, ErrEmbeddingService)
	assert.Equal(t, 3, emb.attempts)
}

func TestSearchZeroKReturnsEmpty(t *testing.T) {
	emb := &stubEmbedder{}
	ix, err := BuildIndex(context.Background(), emb, testChunks(5), fastBuild())
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), emb, "anything", SearchParams{K: 0, FetchK: 10, Lambda: 0.5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFetchKSmallerThanKFails(t *testing.T) {
	emb := &stubEmbedder{}
	ix, err := BuildIndex(context.Background(), emb, testChunks(5), fastBuild())
	require.NoError(t, err)

	_, err = ix.Search(context.Background(), emb, "anything", SearchParams{K: 5, FetchK: 2, Lambda: 0.5})
	assert.ErrorIs(t, err, ErrInvalidSearchConfig)
}

func TestSearchEmptyIndexReturnsEmpty(t *testing.T) {
	emb := &stubEmbedder{}
	ix, err := BuildIndex(context.Background(), emb, nil, fastBuild())
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), emb, "anything", SearchParams{K: 3, FetchK: 10, Lambda: 0.5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksByRelevance(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"query":  {1, 0, 0},
		"close":  {0.99, 0.1, 0},
		"medium": {0.5, 0.8, 0},
		"far":    {0, 0, 1},
	}}
	chunks := []Chunk{
		{ID: "far", Text: "far"},
		{ID: "close", Text: "close"},
		{ID: "medium", Text: "medium"},
	}
	ix, err := BuildIndex(context.Background(), emb, chunks, fastBuild())
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), emb, "query", SearchParams{K: 3, FetchK: 3, Lambda: 1})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "close", results[0].Chunk.ID)
	assert.Equal(t, "medium", results[1].Chunk.ID)
	assert.Equal(t, "far", results[2].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

// Near-duplicate records: with lambda < 1 the second pick must prefer a
// topically distinct chunk over the redundant twin.
func TestSearchDiversityDropsNearDuplicates(t *testing.T) {
	dup := []float32{0.9, 0.43589, 0}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"interesting leaves": {1, 0, 0},
		"duplicate text":     dup,
		"distinct text":      {0.5, -0.6, 0.6245},
	}}
	chunks := []Chunk{
		{ID: "dup-a", Text: "duplicate text"},
		{ID: "dup-b", Text: "duplicate text"},
		{ID: "distinct", Text: "distinct text"},
	}

	// BuildIndex rejects duplicate ids, not duplicate texts; dup-a and dup-b
	// land on identical vectors.
	ix, err := BuildIndex(context.Background(), emb, chunks, fastBuild())
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), emb, "interesting leaves", SearchParams{K: 2, FetchK: 5, Lambda: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "dup-a", results[0].Chunk.ID)
	assert.Equal(t, "distinct", results[1].Chunk.ID)

	// Pure relevance keeps both duplicates.
	results, err = ix.Search(context.Background(), emb, "interesting leaves", SearchParams{K: 2, FetchK: 5, Lambda: 1})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "dup-a", results[0].Chunk.ID)
	assert.Equal(t, "dup-b", results[1].Chunk.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	emb := &stubEmbedder{}
	chunks := testChunks(8)
	built, err := BuildIndex(context.Background(), emb, chunks, fastBuild())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, built.Save(dir))

	loaded, err := LoadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, built.Len(), loaded.Len())
	assert.Equal(t, built.Model(), loaded.Model())

	// Search results (ids, not raw scores) match across reload for a fixed
	// query set.
	queries := []string{"Plant name: Specimen 2", "Plant name: Specimen 6", "watering schedule"}
	params := SearchParams{K: 3, FetchK: 6, Lambda: 0.5}
	for _, q := range queries {
		fromBuilt, err := built.Search(context.Background(), emb, q, params)
		require.NoError(t, err)
		fromLoaded, err := loaded.Search(context.Background(), emb, q, params)
		require.NoError(t, err)

		require.Equal(t, len(fromBuilt), len(fromLoaded))
		for i := range fromBuilt {
			assert.Equal(t, fromBuilt[i].Chunk.ID, fromLoaded[i].Chunk.ID)
		}
	}
}

func TestLoadIndexMissingDir(t *testing.T) {
	_, err := LoadIndex(t.TempDir() + "/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureIndexReusesMatchingSnapshot(t *testing.T) {
	emb := &stubEmbedder{}
	chunks := testChunks(4)
	dir := t.TempDir()
	cfg := fastBuild()

	first, err := EnsureIndex(context.Background(), emb, chunks, dir, cfg)
	require.NoError(t, err)
	builds := emb.calls
	require.Positive(t, builds)

	second, err := EnsureIndex(context.Background(), emb, chunks, dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, builds, emb.calls, "reuse must not re-embed")
	assert.Equal(t, first.Len(), second.Len())
}

func TestEnsureIndexRebuildsOnChangedChunks(t *testing.T) {
	emb := &stubEmbedder{}
	dir := t.TempDir()
	cfg := fastBuild()

	_, err := EnsureIndex(context.Background(), emb, testChunks(4), dir, cfg)
	require.NoError(t, err)
	builds := emb.calls

	changed := testChunks(4)
	changed[0].Text = "Plant name: Renamed Specimen"
	rebuilt, err := EnsureIndex(context.Background(), emb, changed, dir, cfg)
	require.NoError(t, err)
	assert.Greater(t, emb.calls, builds)
	assert.Equal(t, 4, rebuilt.Len())
}

func TestEnsureIndexRebuildsOnModelChange(t *testing.T) {
	emb := &stubEmbedder{}
	chunks := testChunks(4)
	dir := t.TempDir()

	_, err := EnsureIndex(context.Background(), emb, chunks, dir, fastBuild())
	require.NoError(t, err)
	builds := emb.calls

	cfg := fastBuild()
	cfg.Model = "other-embedding"
	_, err = EnsureIndex(context.Background(), emb, chunks, dir, cfg)
	require.NoError(t, err)
	assert.Greater(t, emb.calls, builds)
}

func TestFingerprintSensitivity(t *testing.T) {
	a := testChunks(3)
	b := testChunks(3)
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b[1].Text += " updated"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
