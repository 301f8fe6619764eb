package config

import (
	"fmt"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Config is the root configuration for the GustoBot service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	LLM       llm.Config      `mapstructure:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Neo4j     Neo4jConfig     `mapstructure:"neo4j" yaml:"neo4j"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant" yaml:"qdrant"`
	Postgres  PostgresConfig  `mapstructure:"postgres" yaml:"postgres"`
	GraphRAG  GraphRAGConfig  `mapstructure:"graphrag" yaml:"graphrag"`
	Guardrail GuardrailConfig `mapstructure:"guardrail" yaml:"guardrail"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
	KB        KBConfig        `mapstructure:"kb" yaml:"kb"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"server", &c.Server},
		{"llm", &c.LLM},
		{"embedding", &c.Embedding},
		{"neo4j", &c.Neo4j},
		{"cache", &c.Cache},
		{"history", &c.History},
		{"kb", &c.KB},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, s.name, err)
		}
	}
	return nil
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// Validate checks server settings.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in (0, 65535], got %d", c.Port)
	}
	return nil
}

// EmbeddingConfig configures the embedding backend used by the semantic
// cache and the vector knowledge base.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions"`
}

// Validate checks embedding settings.
func (c *EmbeddingConfig) Validate() error {
	if c.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", c.Dimensions)
	}
	switch c.Provider {
	case "openai", "mock":
	case "":
		return fmt.Errorf("provider cannot be empty")
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Provider)
	}
	return nil
}

// RedisConfig contains Redis connection settings shared by the semantic
// cache and session history.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// Neo4jConfig contains knowledge-graph connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size"`
}

// Validate checks Neo4j settings.
func (c *Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri cannot be empty")
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("pool_size cannot be negative")
	}
	return nil
}

// QdrantConfig contains vector store connection settings.
type QdrantConfig struct {
	Host       string `mapstructure:"host" yaml:"host"`
	Port       int    `mapstructure:"port" yaml:"port"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls" yaml:"use_tls"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// PostgresConfig contains the connection for the hybrid KB store and the
// catalog of Text2SQL target databases.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Connections maps Text2SQL connection IDs to read-only DSNs.
	Connections map[string]string `mapstructure:"connections" yaml:"connections"`

	// MaxRows caps rows fetched by Text2SQL executions.
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`
}

// GraphRAGConfig configures the Graph-RAG retrieval backend.
type GraphRAGConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	DefaultMode string        `mapstructure:"default_mode" yaml:"default_mode"`
	TopK        int           `mapstructure:"top_k" yaml:"top_k"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// GuardrailConfig configures input guardrails.
type GuardrailConfig struct {
	// LLMEnabled turns on the LLM scope check after the heuristics.
	LLMEnabled bool `mapstructure:"llm_enabled" yaml:"llm_enabled"`
}

// CacheConfig configures the semantic cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Prefix    string        `mapstructure:"prefix" yaml:"prefix"`
	Threshold float64       `mapstructure:"threshold" yaml:"threshold"`
	Capacity  int           `mapstructure:"capacity" yaml:"capacity"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Validate checks cache settings.
func (c *CacheConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %f", c.Threshold)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	return nil
}

// HistoryConfig configures session history.
type HistoryConfig struct {
	MaxTurns int           `mapstructure:"max_turns" yaml:"max_turns"`
	Window   int           `mapstructure:"window" yaml:"window"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Validate checks history settings.
func (c *HistoryConfig) Validate() error {
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	if c.Window < 0 || c.Window > c.MaxTurns {
		return fmt.Errorf("window must be between 0 and max_turns")
	}
	return nil
}

// KBConfig configures knowledge-base chunking and retrieval.
type KBConfig struct {
	ChunkSize    int     `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	TopK         int     `mapstructure:"top_k" yaml:"top_k"`
	MinScore     float64 `mapstructure:"min_score" yaml:"min_score"`
}

// Validate checks KB settings.
func (c *KBConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}
	return nil
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}
