package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

type fakeStore struct {
	caps        Capabilities
	upserted    []Chunk
	deleted     []string
	vectorHits  []SearchHit
	keywordHits []SearchHit
	keywordErr  error
}

func (s *fakeStore) Capabilities() Capabilities { return s.caps }

func (s *fakeStore) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	s.upserted = append(s.upserted, chunks...)
	return nil
}

func (s *fakeStore) DeleteDocument(ctx context.Context, documentID string) error {
	s.deleted = append(s.deleted, documentID)
	return nil
}

func (s *fakeStore) VectorSearch(ctx context.Context, vector []float64, topK int) ([]SearchHit, error) {
	return s.vectorHits, nil
}

func (s *fakeStore) KeywordSearch(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	if s.keywordErr != nil {
		return nil, s.keywordErr
	}
	return s.keywordHits, nil
}

func (s *fakeStore) Health(ctx context.Context) types.HealthStatus { return types.Healthy("") }
func (s *fakeStore) Close() error                                  { return nil }

func newTestService(store *fakeStore, cfg config.KBConfig) *Service {
	return NewService(store, embed.NewMockEmbedder(8), cfg, nil)
}

func TestServiceIngestChunksAndStores(t *testing.T) {
	store := &fakeStore{caps: Capabilities{SupportsVector: true}}
	svc := newTestService(store, config.KBConfig{ChunkSize: 10, ChunkOverlap: 0, TopK: 5})

	n, err := svc.Ingest(context.Background(), Document{
		ID:      "doc-1",
		Content: "鱼香肉丝很好吃。回锅肉也很好吃。",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.upserted, 2)
	assert.Equal(t, "doc-1", store.upserted[0].DocumentID)
	assert.Equal(t, 0, store.upserted[0].Index)
	assert.Equal(t, 1, store.upserted[1].Index)
	assert.Len(t, store.upserted[0].Vector, 8)
	assert.NotEmpty(t, store.upserted[0].ID)
}

func TestServiceIngestEmptyContent(t *testing.T) {
	store := &fakeStore{caps: Capabilities{SupportsVector: true}}
	svc := newTestService(store, config.KBConfig{ChunkSize: 10})

	_, err := svc.Ingest(context.Background(), Document{ID: "doc-1"})
	require.Error(t, err)
	assert.Equal(t, types.KB_INGEST_FAILED, types.CodeOf(err))
}

func TestServiceIngestGeneratesDocumentID(t *testing.T) {
	store := &fakeStore{caps: Capabilities{SupportsVector: true}}
	svc := newTestService(store, config.KBConfig{ChunkSize: 100})

	n, err := svc.Ingest(context.Background(), Document{Content: "川菜以麻辣著称。"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, store.upserted[0].DocumentID)
}

func TestServiceDelete(t *testing.T) {
	store := &fakeStore{caps: Capabilities{SupportsVector: true}}
	svc := newTestService(store, config.KBConfig{})

	require.NoError(t, svc.Delete(context.Background(), "doc-9"))
	assert.Equal(t, []string{"doc-9"}, store.deleted)

	err := svc.Delete(context.Background(), "")
	assert.Equal(t, types.KB_INGEST_FAILED, types.CodeOf(err))
}

func TestServiceSearchVectorOnly(t *testing.T) {
	store := &fakeStore{
		caps:       Capabilities{SupportsVector: true},
		vectorHits: []SearchHit{hit("a", 0.9, "vector"), hit("b", 0.6, "vector")},
	}
	svc := newTestService(store, config.KBConfig{TopK: 5})

	hits, err := svc.Search(context.Background(), "麻婆豆腐的做法", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.ID)
}

func TestServiceSearchHybridFusion(t *testing.T) {
	store := &fakeStore{
		caps:        Capabilities{SupportsVector: true, SupportsKeyword: true},
		vectorHits:  []SearchHit{hit("a", 0.9, "vector"), hit("b", 0.8, "vector")},
		keywordHits: []SearchHit{hit("c", 1.0, "keyword"), hit("b", 1.0, "keyword")},
	}
	svc := newTestService(store, config.KBConfig{TopK: 3})

	hits, err := svc.Search(context.Background(), "回锅肉", 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "b", hits[0].Chunk.ID)
	assert.Equal(t, "hybrid", hits[0].Source)
}

func TestServiceSearchKeywordFailureDegrades(t *testing.T) {
	store := &fakeStore{
		caps:       Capabilities{SupportsVector: true, SupportsKeyword: true},
		vectorHits: []SearchHit{hit("a", 0.9, "vector")},
		keywordErr: types.NewError(types.VECTOR_SEARCH_FAILED, "keyword index offline"),
	}
	svc := newTestService(store, config.KBConfig{TopK: 3})

	hits, err := svc.Search(context.Background(), "回锅肉", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Chunk.ID)
}

func TestServiceSearchMinScoreFilter(t *testing.T) {
	store := &fakeStore{
		caps:       Capabilities{SupportsVector: true},
		vectorHits: []SearchHit{hit("a", 0.9, "vector"), hit("b", 0.2, "vector")},
	}
	svc := newTestService(store, config.KBConfig{TopK: 5, MinScore: 0.5})

	hits, err := svc.Search(context.Background(), "宫保鸡丁", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Chunk.ID)
}
