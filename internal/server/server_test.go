package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/chat"
	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/kb"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
	"github.com/jhlu2019/GustoBot-sub001/internal/router"
	"github.com/jhlu2019/GustoBot-sub001/internal/supervisor"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// memStore is an in-memory kb.Store for exercising the admin endpoints.
type memStore struct {
	chunks map[string][]kb.Chunk
}

func newMemStore() *memStore { return &memStore{chunks: make(map[string][]kb.Chunk)} }

func (s *memStore) Capabilities() kb.Capabilities { return kb.Capabilities{SupportsVector: true} }

func (s *memStore) UpsertChunks(ctx context.Context, chunks []kb.Chunk) error {
	for _, c := range chunks {
		s.chunks[c.DocumentID] = append(s.chunks[c.DocumentID], c)
	}
	return nil
}

func (s *memStore) DeleteDocument(ctx context.Context, documentID string) error {
	delete(s.chunks, documentID)
	return nil
}

func (s *memStore) VectorSearch(ctx context.Context, vector []float64, topK int) ([]kb.SearchHit, error) {
	return nil, nil
}

func (s *memStore) KeywordSearch(ctx context.Context, query string, topK int) ([]kb.SearchHit, error) {
	return nil, nil
}

func (s *memStore) Health(ctx context.Context) types.HealthStatus { return types.Healthy("") }
func (s *memStore) Close() error                                  { return nil }

func newTestServer(t *testing.T, store kb.Store) *Server {
	t.Helper()
	sup := supervisor.New(supervisor.Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(providers.NewMockProvider("您好！想学做什么菜？"), nil),
	})
	var kbService *kb.Service
	if store != nil {
		kbService = kb.NewService(store, embed.NewMockEmbedder(8), config.KBConfig{ChunkSize: 100}, nil)
	}
	return New(sup, kbService, nil, nil)
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	body := strings.NewReader(`{"session_id":"s1","question":"你好"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "您好！想学做什么菜？", resp.Answer)
	assert.Equal(t, types.AnswerChat, resp.Type)
}

func TestChatEndpointGeneratesSessionID(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"你好"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatEndpointRejectsMissingQuestion(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestChatStreamEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/stream?session_id=s1&question=你好", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: delta")
	assert.Contains(t, body, "event: done")
	assert.Contains(t, body, "您好！想学做什么菜？")
}

func TestChatStreamRequiresQuestion(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/stream", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestAndDeleteDocument(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)

	body := strings.NewReader(`{"id":"doc-1","title":"麻婆豆腐","content":"麻婆豆腐始创于清代成都。"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/kb/documents", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "doc-1", resp.DocumentID)
	assert.Equal(t, 1, resp.Chunks)
	assert.NotEmpty(t, store.chunks["doc-1"])

	del := httptest.NewRequest(http.MethodDelete, "/api/kb/documents/doc-1", nil)
	delRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(delRec, del)

	assert.Equal(t, http.StatusNoContent, delRec.Code)
	assert.Empty(t, store.chunks["doc-1"])
}

func TestIngestWithoutKBService(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/kb/documents", strings.NewReader(`{"content":"x"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	sup := supervisor.New(supervisor.Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})
	checks := map[string]HealthChecker{
		"neo4j": func(ctx context.Context) types.HealthStatus { return types.Healthy("") },
		"redis": func(ctx context.Context) types.HealthStatus { return types.Unhealthy("connection refused") },
	}
	srv := New(sup, nil, checks, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, types.HealthStateUnhealthy, resp.Components["redis"].State)
}

func TestHealthzAllHealthy(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
