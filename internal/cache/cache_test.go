package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// stubEmbedder maps known texts to fixed vectors so similarity outcomes
// are explicit in each test.
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int { return 3 }
func (e *stubEmbedder) Model() string   { return "stub" }
func (e *stubEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("")
}

func newTestCache(embedder *stubEmbedder, cfg config.CacheConfig) *SemanticCache {
	cfg.Enabled = true
	return NewSemanticCache(NewMemoryBackend(), embedder, cfg, nil)
}

func TestCacheHitOnSimilarQuestion(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"麻婆豆腐怎么做？":   {1, 0, 0},
		"麻婆豆腐的做法是什么": {0.99, 0.14, 0},
	}}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92})
	ctx := context.Background()

	c.Store(ctx, "user-1", "麻婆豆腐怎么做？", "先炒豆瓣酱……", types.AnswerKnowledge)

	hit, ok := c.Lookup(ctx, "user-1", "麻婆豆腐的做法是什么")
	require.True(t, ok)
	assert.Equal(t, "先炒豆瓣酱……", hit.Answer)
	assert.Equal(t, types.AnswerKnowledge, hit.Type)
	assert.Equal(t, "麻婆豆腐怎么做？", hit.Question)
	assert.GreaterOrEqual(t, hit.Similarity, 0.92)
}

func TestCacheMissBelowThreshold(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"麻婆豆腐怎么做？": {1, 0, 0},
		"今天天气怎么样":  {0, 1, 0},
	}}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92})
	ctx := context.Background()

	c.Store(ctx, "user-1", "麻婆豆腐怎么做？", "先炒豆瓣酱……", types.AnswerKnowledge)

	_, ok := c.Lookup(ctx, "user-1", "今天天气怎么样")
	assert.False(t, ok)
}

func TestCacheScopesAreIsolated(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"回锅肉的做法": {1, 0, 0},
	}}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92})
	ctx := context.Background()

	c.Store(ctx, "user-1", "回锅肉的做法", "五花肉先煮后炒。", types.AnswerKnowledge)

	_, ok := c.Lookup(ctx, "user-2", "回锅肉的做法")
	assert.False(t, ok)

	hit, ok := c.Lookup(ctx, "user-1", "回锅肉的做法")
	require.True(t, ok)
	assert.Equal(t, "五花肉先煮后炒。", hit.Answer)
}

func TestCacheSkipsNonCacheableAnswers(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"无关的问题": {1, 0, 0},
	}}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92})
	ctx := context.Background()

	c.Store(ctx, "user-1", "无关的问题", "这个问题超出了范围。", types.AnswerReject)
	c.Store(ctx, "user-1", "无关的问题", "出错了。", types.AnswerError)

	_, ok := c.Lookup(ctx, "user-1", "无关的问题")
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{"q": {1, 0, 0}}}
	c := NewSemanticCache(NewMemoryBackend(), embedder, config.CacheConfig{Enabled: false}, nil)
	ctx := context.Background()

	c.Store(ctx, "user-1", "q", "a", types.AnswerKnowledge)
	_, ok := c.Lookup(ctx, "user-1", "q")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
}

func TestCacheEmbeddingFailureIsAMiss(t *testing.T) {
	embedder := &stubEmbedder{err: types.NewError(types.EMBEDDING_FAILED, "embedding backend offline")}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92})

	_, ok := c.Lookup(context.Background(), "user-1", "麻婆豆腐怎么做？")
	assert.False(t, ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"问题一": {1, 0, 0},
		"问题二": {0, 1, 0},
		"问题三": {0, 0, 1},
	}}
	c := newTestCache(embedder, config.CacheConfig{Threshold: 0.92, Capacity: 2})
	ctx := context.Background()

	c.Store(ctx, "user-1", "问题一", "答案一", types.AnswerKnowledge)
	time.Sleep(2 * time.Millisecond)
	c.Store(ctx, "user-1", "问题二", "答案二", types.AnswerKnowledge)
	time.Sleep(2 * time.Millisecond)

	// touch 问题一 so 问题二 becomes the LRU entry
	_, ok := c.Lookup(ctx, "user-1", "问题一")
	require.True(t, ok)
	time.Sleep(2 * time.Millisecond)

	c.Store(ctx, "user-1", "问题三", "答案三", types.AnswerKnowledge)

	_, ok = c.Lookup(ctx, "user-1", "问题二")
	assert.False(t, ok, "LRU entry should be evicted")
	_, ok = c.Lookup(ctx, "user-1", "问题一")
	assert.True(t, ok)
	_, ok = c.Lookup(ctx, "user-1", "问题三")
	assert.True(t, ok)
}

func TestMemoryBackendTTLExpiry(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	entry := Entry{Key: "k1", Question: "q", Answer: "a", Vector: []float64{1}}
	require.NoError(t, b.Put(ctx, "scope", entry, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	entries, err := b.Entries(ctx, "scope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
