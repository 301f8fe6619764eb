package kb

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Service ties chunking, embedding and the vector store together.
type Service struct {
	store    Store
	embedder embed.Embedder
	chunker  *Chunker
	cfg      config.KBConfig
	logger   *observability.TracedLogger
}

// NewService builds a knowledge-base service.
func NewService(store Store, embedder embed.Embedder, cfg config.KBConfig, logger *observability.TracedLogger) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:      cfg,
		logger:   logger,
	}
}

// Ingest chunks a document, embeds the chunks and stores them. It returns
// the number of chunks written.
func (s *Service) Ingest(ctx context.Context, doc Document) (int, error) {
	if doc.Content == "" {
		return 0, types.NewError(types.KB_INGEST_FAILED, "document content is empty")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	pieces := s.chunker.Split(doc.Content)
	if len(pieces) == 0 {
		return 0, types.NewError(types.KB_INGEST_FAILED, "document produced no chunks")
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, types.WrapError(types.KB_INGEST_FAILED, "failed to embed document chunks", err)
	}
	if len(vectors) != len(pieces) {
		return 0, types.NewError(types.KB_INGEST_FAILED,
			fmt.Sprintf("embedding count mismatch: %d chunks, %d vectors", len(pieces), len(vectors)))
	}

	chunks := make([]Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      i,
			Content:    content,
			Vector:     vectors[i],
		}
	}
	if err := s.store.UpsertChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info(ctx, "document ingested", "document_id", doc.ID, "chunks", len(chunks))
	}
	return len(chunks), nil
}

// Delete removes a document's chunks from the store.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return types.NewError(types.KB_INGEST_FAILED, "document id is required")
	}
	return s.store.DeleteDocument(ctx, documentID)
}

// Search runs vector and keyword search as the store allows, fuses the
// result lists and drops hits below the configured minimum score.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if topK <= 0 {
		topK = 5
	}

	caps := s.store.Capabilities()
	var lists [][]SearchHit

	if caps.SupportsVector {
		vector, err := s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, types.WrapError(types.VECTOR_SEARCH_FAILED, "failed to embed query", err)
		}
		hits, err := s.store.VectorSearch(ctx, vector, topK)
		if err != nil {
			return nil, err
		}
		lists = append(lists, hits)
	}

	if caps.SupportsKeyword {
		hits, err := s.store.KeywordSearch(ctx, query, topK)
		if err != nil {
			// Keyword search is a supplement; degrade to vector-only.
			if s.logger != nil {
				s.logger.Warn(ctx, "keyword search failed, using vector results only", "error", err)
			}
		} else {
			lists = append(lists, hits)
		}
	}

	if len(lists) == 0 {
		return nil, types.NewError(types.CAPABILITY_UNSUPPORTED, "store supports neither vector nor keyword search")
	}

	fused := FuseHits(topK, lists...)
	if s.cfg.MinScore <= 0 {
		return fused, nil
	}
	kept := fused[:0]
	for _, hit := range fused {
		if hit.Score >= s.cfg.MinScore {
			kept = append(kept, hit)
		}
	}
	return kept, nil
}

// Health reports the health of the store and the embedder.
func (s *Service) Health(ctx context.Context) types.HealthStatus {
	if st := s.store.Health(ctx); st.State != types.HealthStateHealthy {
		return st
	}
	return s.embedder.Health(ctx)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
