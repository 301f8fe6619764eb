package config

import (
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
)

// DefaultConfig returns a Config with sensible default values. A mock LLM
// provider is configured so the service can start without credentials.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		LLM: llm.Config{
			DefaultProvider: "mock",
			Providers: map[string]llm.ProviderConfig{
				"mock": {Type: llm.ProviderMock},
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
			PoolSize: 10,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "gustobot_kb",
		},
		Postgres: PostgresConfig{
			MaxRows: 200,
		},
		GraphRAG: GraphRAGConfig{
			BaseURL:     "http://localhost:9621",
			DefaultMode: "hybrid",
			TopK:        10,
			Timeout:     60 * time.Second,
		},
		Guardrail: GuardrailConfig{
			LLMEnabled: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Prefix:    "gustobot:cache",
			Threshold: 0.92,
			Capacity:  2000,
			TTL:       24 * time.Hour,
		},
		History: HistoryConfig{
			MaxTurns: 1000,
			Window:   6,
			TTL:      7 * 24 * time.Hour,
		},
		KB: KBConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
			TopK:         5,
			MinScore:     0.3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
