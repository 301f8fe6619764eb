package kb

import (
	"context"

	"github.com/qdrant/go-client/qdrant"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// QdrantStore keeps chunks in a Qdrant collection. It serves vector
// search only; keyword search needs the hybrid Postgres store.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *observability.TracedLogger
}

// NewQdrantStore connects to Qdrant.
func NewQdrantStore(cfg config.QdrantConfig, logger *observability.TracedLogger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, types.WrapError(types.VECTOR_STORE_FAILED, "failed to create qdrant client", err)
	}
	return &QdrantStore{client: client, collection: cfg.Collection, logger: logger}, nil
}

// Capabilities reports vector-only search.
func (s *QdrantStore) Capabilities() Capabilities {
	return Capabilities{SupportsVector: true}
}

// UpsertChunks writes chunk points with their payloads.
func (s *QdrantStore) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ID),
			Vectors: qdrant.NewVectors(toFloat32(chunk.Vector)...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": chunk.DocumentID,
				"chunk_index": int64(chunk.Index),
				"content":     chunk.Content,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return types.WrapRetryableError(types.VECTOR_STORE_FAILED, "qdrant upsert failed", err)
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "chunks upserted", "count", len(points), "collection", s.collection)
	}
	return nil
}

// DeleteDocument removes every chunk of a document.
func (s *QdrantStore) DeleteDocument(ctx context.Context, documentID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "document_id",
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: documentID}},
				},
			},
		}},
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return types.WrapRetryableError(types.VECTOR_STORE_FAILED, "qdrant delete failed", err)
	}
	return nil
}

// VectorSearch runs similarity search over the collection.
func (s *QdrantStore) VectorSearch(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, types.WrapRetryableError(types.VECTOR_SEARCH_FAILED, "qdrant query failed", err)
	}

	hits := make([]SearchHit, 0, len(points))
	for _, point := range points {
		chunk := Chunk{}
		if point.Id != nil {
			chunk.ID = point.Id.GetUuid()
		}
		if point.Payload != nil {
			chunk.DocumentID = point.Payload["document_id"].GetStringValue()
			chunk.Index = int(point.Payload["chunk_index"].GetIntegerValue())
			chunk.Content = point.Payload["content"].GetStringValue()
		}
		hits = append(hits, SearchHit{Chunk: chunk, Score: float64(point.Score), Source: "vector"})
	}
	return hits, nil
}

// KeywordSearch is unsupported on Qdrant.
func (s *QdrantStore) KeywordSearch(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	return nil, types.NewError(types.CAPABILITY_UNSUPPORTED, "qdrant store does not support keyword search")
}

// Health probes the Qdrant server.
func (s *QdrantStore) Health(ctx context.Context) types.HealthStatus {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
