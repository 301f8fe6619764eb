package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/cache"
	"github.com/jhlu2019/GustoBot-sub001/internal/chat"
	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/graph"
	"github.com/jhlu2019/GustoBot-sub001/internal/graphrag"
	"github.com/jhlu2019/GustoBot-sub001/internal/guardrail"
	"github.com/jhlu2019/GustoBot-sub001/internal/history"
	"github.com/jhlu2019/GustoBot-sub001/internal/kb"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/planner"
	"github.com/jhlu2019/GustoBot-sub001/internal/router"
	"github.com/jhlu2019/GustoBot-sub001/internal/server"
	"github.com/jhlu2019/GustoBot-sub001/internal/summarize"
	"github.com/jhlu2019/GustoBot-sub001/internal/supervisor"
	"github.com/jhlu2019/GustoBot-sub001/internal/text2sql"
	"github.com/jhlu2019/GustoBot-sub001/internal/toolselect"
)

// app holds the assembled service and everything that needs closing on
// shutdown.
type app struct {
	cfg     *config.Config
	logger  *observability.TracedLogger
	sup     *supervisor.Supervisor
	kb      *kb.Service
	checks  map[string]server.HealthChecker
	closers []func() error
}

// buildApp assembles the supervisor from configuration. Optional
// backends that fail to connect are logged and skipped; their routes
// degrade instead of blocking startup.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := newLogger(cfg.Logging)
	a := &app{cfg: cfg, logger: logger, checks: map[string]server.HealthChecker{}}

	provider, err := providers.NewProvider(cfg.LLM.Providers[cfg.LLM.DefaultProvider])
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	a.checks["embedding"] = embedder.Health

	// knowledge graph
	var (
		cypherTool     *graph.CypherTool
		predefinedTool *graph.PredefinedTool
	)
	querier, err := graph.NewNeo4jQuerier(cfg.Neo4j, logger.WithComponent("graph"))
	if err != nil {
		logger.Warn(ctx, "neo4j unavailable, graph tools disabled", "error", err)
	} else {
		a.closers = append(a.closers, func() error { return querier.Close(ctx) })
		a.checks["neo4j"] = querier.Health
		cypherTool = graph.NewCypherTool(provider, querier, logger.WithComponent("graph"))
		predefinedTool = graph.NewPredefinedTool(provider, querier, logger.WithComponent("graph"))
	}

	// LightRAG backend
	var ragClient *graphrag.Client
	if cfg.GraphRAG.BaseURL != "" {
		ragClient = graphrag.NewClient(cfg.GraphRAG, logger.WithComponent("graphrag"))
		a.checks["graphrag"] = ragClient.Health
	}

	// Text2SQL over Postgres
	var sqlPipeline *text2sql.Pipeline
	if len(cfg.Postgres.Connections) > 0 || cfg.Postgres.DSN != "" {
		executor, err := text2sql.NewPgxExecutor(ctx, cfg.Postgres, logger.WithComponent("text2sql"))
		if err != nil {
			logger.Warn(ctx, "postgres unavailable, text2sql disabled", "error", err)
		} else {
			a.closers = append(a.closers, func() error { executor.Close(); return nil })
			sqlPipeline = text2sql.NewPipeline(provider, text2sql.DefaultCatalog(), executor,
				logger.WithComponent("text2sql"))
		}
	}

	// document knowledge base
	if store := newKBStore(ctx, cfg, logger); store != nil {
		a.kb = kb.NewService(store, embedder, cfg.KB, logger.WithComponent("kb"))
		a.closers = append(a.closers, a.kb.Close)
		a.checks["kb"] = a.kb.Health
	}

	// semantic cache
	var semCache *cache.SemanticCache
	if cfg.Cache.Enabled {
		backend := newCacheBackend(ctx, cfg, logger)
		semCache = cache.NewSemanticCache(backend, embedder, cfg.Cache, logger.WithComponent("cache"))
		a.closers = append(a.closers, semCache.Close)
		a.checks["cache"] = semCache.Health
	}

	// session history
	histStore := newHistoryStore(ctx, cfg, logger)
	histManager := history.NewManager(histStore, cfg.History, logger.WithComponent("history"))
	a.closers = append(a.closers, histManager.Close)

	dispatcher := supervisor.NewDispatcher(cypherTool, predefinedTool, ragClient, sqlPipeline,
		logger.WithComponent("dispatcher"))

	a.sup = supervisor.New(supervisor.Options{
		Guard:      guardrail.New(provider, cfg.Guardrail.LLMEnabled, logger.WithComponent("guardrail")),
		Router:     router.New(provider, logger.WithComponent("router")),
		Planner:    planner.New(provider, logger.WithComponent("planner")),
		Selector:   toolselect.New(provider, logger.WithComponent("toolselect")),
		Dispatcher: dispatcher,
		Summarizer: summarize.NewSummarizer(provider, logger.WithComponent("summarize")),
		ChatAgent:  chat.NewAgent(provider, logger.WithComponent("chat")),
		KBService:  a.kb,
		SQL:        sqlPipeline,
		Cache:      semCache,
		History:    histManager,
		Logger:     logger.WithComponent("supervisor"),
	})
	return a, nil
}

// close releases app resources in reverse construction order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "shutdown cleanup failed", "error", err)
		}
	}
}

func newLogger(cfg config.LoggingConfig) *observability.TracedLogger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = observability.NewTextHandler(os.Stderr, level)
	} else {
		handler = observability.NewJSONHandler(os.Stderr, level)
	}
	return observability.NewTracedLogger(handler, "gustobot")
}

func newEmbedder(cfg config.EmbeddingConfig) (embed.Embedder, error) {
	if cfg.Provider == string(llm.ProviderMock) {
		return embed.NewMockEmbedder(cfg.Dimensions), nil
	}
	return embed.NewOpenAIEmbedder(cfg)
}

// newKBStore prefers Qdrant, then pgvector, then nothing.
func newKBStore(ctx context.Context, cfg *config.Config, logger *observability.TracedLogger) kb.Store {
	if cfg.Qdrant.Host != "" {
		store, err := kb.NewQdrantStore(cfg.Qdrant, logger.WithComponent("kb"))
		if err == nil {
			return store
		}
		logger.Warn(ctx, "qdrant unavailable, trying pgvector", "error", err)
	}
	if cfg.Postgres.DSN != "" {
		store, err := kb.NewPgvectorStore(ctx, cfg.Postgres.DSN, logger.WithComponent("kb"))
		if err == nil {
			return store
		}
		logger.Warn(ctx, "pgvector unavailable, knowledge base disabled", "error", err)
	}
	return nil
}

func newCacheBackend(ctx context.Context, cfg *config.Config, logger *observability.TracedLogger) cache.Backend {
	if cfg.Redis.Addr != "" {
		backend, err := cache.NewRedisBackend(ctx, cfg.Redis)
		if err == nil {
			return backend
		}
		logger.Warn(ctx, "redis unavailable, semantic cache falls back to memory", "error", err)
	}
	return cache.NewMemoryBackend()
}

func newHistoryStore(ctx context.Context, cfg *config.Config, logger *observability.TracedLogger) history.Store {
	if cfg.Redis.Addr != "" {
		store, err := history.NewRedisStore(ctx, cfg.Redis, cfg.History)
		if err == nil {
			return store
		}
		logger.Warn(ctx, "redis unavailable, session history falls back to memory", "error", err)
	}
	return history.NewMemoryStore(cfg.History.MaxTurns)
}
