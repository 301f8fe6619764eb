package kb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// PgvectorStore keeps chunks in Postgres with a pgvector embedding column.
// It supports both vector similarity and ILIKE keyword search, so it can
// serve hybrid retrieval on its own.
type PgvectorStore struct {
	pool   *pgxpool.Pool
	logger *observability.TracedLogger
}

const pgvectorSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS kb_chunks (
    id          TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    chunk_index INT  NOT NULL,
    content     TEXT NOT NULL,
    embedding   vector(1536)
);
CREATE INDEX IF NOT EXISTS kb_chunks_document_id_idx ON kb_chunks (document_id);
`

// NewPgvectorStore connects to Postgres and ensures the chunk table exists.
func NewPgvectorStore(ctx context.Context, dsn string, logger *observability.TracedLogger) (*PgvectorStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, types.WrapError(types.VECTOR_STORE_FAILED, "failed to connect to postgres", err)
	}
	if _, err := pool.Exec(ctx, pgvectorSchema); err != nil {
		pool.Close()
		return nil, types.WrapError(types.VECTOR_STORE_FAILED, "failed to initialize kb_chunks schema", err)
	}
	return &PgvectorStore{pool: pool, logger: logger}, nil
}

// Capabilities reports hybrid search support.
func (s *PgvectorStore) Capabilities() Capabilities {
	return Capabilities{SupportsVector: true, SupportsKeyword: true}
}

// UpsertChunks writes chunks, replacing rows with the same id.
func (s *PgvectorStore) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	for _, chunk := range chunks {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO kb_chunks (id, document_id, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET document_id = EXCLUDED.document_id,
			     chunk_index = EXCLUDED.chunk_index,
			     content     = EXCLUDED.content,
			     embedding   = EXCLUDED.embedding`,
			chunk.ID, chunk.DocumentID, chunk.Index, chunk.Content,
			pgvector.NewVector(toFloat32(chunk.Vector)))
		if err != nil {
			return types.WrapRetryableError(types.VECTOR_STORE_FAILED,
				fmt.Sprintf("failed to upsert chunk %s", chunk.ID), err)
		}
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "chunks upserted", "count", len(chunks))
	}
	return nil
}

// DeleteDocument removes every chunk of a document.
func (s *PgvectorStore) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kb_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return types.WrapRetryableError(types.VECTOR_STORE_FAILED, "failed to delete document chunks", err)
	}
	return nil
}

// VectorSearch orders by cosine distance and reports cosine similarity
// as the score.
func (s *PgvectorStore) VectorSearch(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	query := pgvector.NewVector(toFloat32(vector))
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content, 1 - (embedding <=> $1) AS similarity
		 FROM kb_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		query, topK)
	if err != nil {
		return nil, types.WrapRetryableError(types.VECTOR_SEARCH_FAILED, "vector search failed", err)
	}
	defer rows.Close()
	return s.scanHits(rows, "vector")
}

// KeywordSearch matches chunk content with case-insensitive substring
// search. The score is a fixed 1.0 since ILIKE gives no ranking; fusion
// downstream uses rank position anyway.
func (s *PgvectorStore) KeywordSearch(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content, 1.0 AS similarity
		 FROM kb_chunks
		 WHERE content ILIKE '%' || $1 || '%'
		 ORDER BY chunk_index
		 LIMIT $2`,
		query, topK)
	if err != nil {
		return nil, types.WrapRetryableError(types.VECTOR_SEARCH_FAILED, "keyword search failed", err)
	}
	defer rows.Close()
	return s.scanHits(rows, "keyword")
}

type hitRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func (s *PgvectorStore) scanHits(rows hitRows, source string) ([]SearchHit, error) {
	var hits []SearchHit
	for rows.Next() {
		var chunk Chunk
		var score float64
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content, &score); err != nil {
			return nil, types.WrapError(types.VECTOR_SEARCH_FAILED, "failed to scan search hit", err)
		}
		hits = append(hits, SearchHit{Chunk: chunk, Score: score, Source: source})
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapRetryableError(types.VECTOR_SEARCH_FAILED, "search iteration failed", err)
	}
	return hits, nil
}

// Health pings Postgres.
func (s *PgvectorStore) Health(ctx context.Context) types.HealthStatus {
	if err := s.pool.Ping(ctx); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

// Close releases the connection pool.
func (s *PgvectorStore) Close() error {
	s.pool.Close()
	return nil
}
