// Package kb implements knowledge-base ingestion and retrieval: documents
// are chunked, embedded and stored in a vector store; queries run vector
// and keyword search and fuse the results.
package kb

import (
	"context"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Document is one source text to ingest.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Chunk is one embedded slice of a document.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	Vector     []float64 `json:"-"`
}

// SearchHit is one retrieved chunk with its relevance score.
type SearchHit struct {
	Chunk  Chunk   `json:"chunk"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// Capabilities describes what a store can do, so the service only issues
// the search kinds the backend supports.
type Capabilities struct {
	SupportsVector  bool
	SupportsKeyword bool
}

// Store persists chunks and serves similarity and keyword lookups.
type Store interface {
	Capabilities() Capabilities
	UpsertChunks(ctx context.Context, chunks []Chunk) error
	DeleteDocument(ctx context.Context, documentID string) error
	VectorSearch(ctx context.Context, vector []float64, topK int) ([]SearchHit, error)
	KeywordSearch(ctx context.Context, query string, topK int) ([]SearchHit, error)
	Health(ctx context.Context) types.HealthStatus
	Close() error
}
