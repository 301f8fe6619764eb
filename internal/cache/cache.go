// Package cache implements a semantic answer cache: questions are
// embedded and a new question reuses a stored answer when its cosine
// similarity to a cached question meets the threshold. Entries are
// scoped per user (or session) and evicted least-recently-used once a
// scope exceeds its capacity.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Entry is one cached question/answer pair with its embedding.
type Entry struct {
	Key        string           `json:"key"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Type       types.AnswerType `json:"type"`
	Vector     []float64        `json:"vector"`
	CreatedAt  time.Time        `json:"created_at"`
	LastAccess time.Time        `json:"last_access"`
}

// Hit is a successful cache lookup.
type Hit struct {
	Answer     string
	Type       types.AnswerType
	Question   string
	Similarity float64
}

// Backend stores cache entries per scope.
type Backend interface {
	Put(ctx context.Context, scope string, entry Entry, ttl time.Duration) error
	Entries(ctx context.Context, scope string) ([]Entry, error)
	Touch(ctx context.Context, scope, key string, at time.Time) error
	Delete(ctx context.Context, scope string, keys ...string) error
	Health(ctx context.Context) types.HealthStatus
	Close() error
}

// defaults applied when the configuration leaves them zero.
const (
	defaultThreshold = 0.92
	defaultCapacity  = 256
)

// SemanticCache matches questions by embedding similarity. All failures
// are treated as cache misses and logged; the cache never fails a turn.
type SemanticCache struct {
	backend  Backend
	embedder embed.Embedder
	cfg      config.CacheConfig
	logger   *observability.TracedLogger
}

// NewSemanticCache builds a cache over the given backend.
func NewSemanticCache(backend Backend, embedder embed.Embedder, cfg config.CacheConfig, logger *observability.TracedLogger) *SemanticCache {
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "gustobot"
	}
	return &SemanticCache{backend: backend, embedder: embedder, cfg: cfg, logger: logger}
}

// Enabled reports whether lookups and stores are active.
func (c *SemanticCache) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.backend != nil && c.embedder != nil
}

// Lookup returns the best cached answer whose question is similar enough
// to the given one. A miss, like any backend or embedding failure,
// returns (nil, false).
func (c *SemanticCache) Lookup(ctx context.Context, scope, question string) (*Hit, bool) {
	if !c.Enabled() || question == "" {
		return nil, false
	}

	vector, err := c.embedder.Embed(ctx, question)
	if err != nil {
		c.warn(ctx, "cache lookup skipped: embedding failed", err)
		return nil, false
	}

	entries, err := c.backend.Entries(ctx, c.scopeKey(scope))
	if err != nil {
		c.warn(ctx, "cache lookup skipped: backend unavailable", err)
		return nil, false
	}

	var best *Entry
	bestScore := 0.0
	for i := range entries {
		score := embed.Cosine(vector, entries[i].Vector)
		if score >= c.cfg.Threshold && score > bestScore {
			best = &entries[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, false
	}

	if err := c.backend.Touch(ctx, c.scopeKey(scope), best.Key, time.Now()); err != nil {
		c.warn(ctx, "cache touch failed", err)
	}
	if c.logger != nil {
		c.logger.Debug(ctx, "semantic cache hit", "similarity", bestScore, "cached_question", best.Question)
	}
	return &Hit{Answer: best.Answer, Type: best.Type, Question: best.Question, Similarity: bestScore}, true
}

// Store caches an answer when its type allows caching. Over-capacity
// scopes evict their least recently used entries.
func (c *SemanticCache) Store(ctx context.Context, scope, question, answer string, answerType types.AnswerType) {
	if !c.Enabled() || question == "" || answer == "" {
		return
	}
	if !answerType.Cacheable() {
		return
	}

	vector, err := c.embedder.Embed(ctx, question)
	if err != nil {
		c.warn(ctx, "cache store skipped: embedding failed", err)
		return
	}

	now := time.Now()
	entry := Entry{
		Key:        questionKey(question),
		Question:   question,
		Answer:     answer,
		Type:       answerType,
		Vector:     vector,
		CreatedAt:  now,
		LastAccess: now,
	}
	if err := c.backend.Put(ctx, c.scopeKey(scope), entry, c.cfg.TTL); err != nil {
		c.warn(ctx, "cache store failed", err)
		return
	}
	c.evict(ctx, c.scopeKey(scope))
}

// evict trims a scope down to capacity, oldest last-access first.
func (c *SemanticCache) evict(ctx context.Context, scopeKey string) {
	entries, err := c.backend.Entries(ctx, scopeKey)
	if err != nil || len(entries) <= c.cfg.Capacity {
		return
	}
	sortByLastAccess(entries)
	var stale []string
	for _, e := range entries[:len(entries)-c.cfg.Capacity] {
		stale = append(stale, e.Key)
	}
	if err := c.backend.Delete(ctx, scopeKey, stale...); err != nil {
		c.warn(ctx, "cache eviction failed", err)
	}
}

// Health reports backend health, or degraded when disabled.
func (c *SemanticCache) Health(ctx context.Context) types.HealthStatus {
	if !c.Enabled() {
		return types.Degraded("semantic cache disabled")
	}
	return c.backend.Health(ctx)
}

// Close releases the backend.
func (c *SemanticCache) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}

func (c *SemanticCache) scopeKey(scope string) string {
	return c.cfg.Prefix + ":" + scope
}

func (c *SemanticCache) warn(ctx context.Context, msg string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(ctx, msg, "error", types.WrapError(types.CACHE_UNAVAILABLE, msg, err))
}

func questionKey(question string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(question)))
}

func sortByLastAccess(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})
}
