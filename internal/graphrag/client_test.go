package graphrag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.GraphRAGConfig{
		BaseURL:     baseURL,
		DefaultMode: "hybrid",
		TopK:        10,
		Timeout:     5 * time.Second,
	}, nil)
}

func TestQuerySendsModeAndTopK(t *testing.T) {
	var got QueryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(QueryResponse{
			Query:    got.Query,
			Response: "川菜以麻辣著称，代表菜有麻婆豆腐。",
			Mode:     got.Mode,
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Query(context.Background(), QueryRequest{Query: "川菜有什么特点？"})
	require.NoError(t, err)
	assert.Equal(t, ModeHybrid, got.Mode)
	assert.Equal(t, 10, got.TopK)
	assert.Contains(t, resp.Response, "麻婆豆腐")
}

func TestQueryRejectsUnknownMode(t *testing.T) {
	c := newTestClient("http://localhost:9999")
	_, err := c.Query(context.Background(), QueryRequest{Query: "x", Mode: "turbo"})
	require.Error(t, err)
	assert.Equal(t, types.GRAPHRAG_MODE_UNSUPPORTED, types.CodeOf(err))
}

func TestQueryBackendErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Query(context.Background(), QueryRequest{Query: "x"})
	require.Error(t, err)
	assert.Equal(t, types.GRAPHRAG_UNAVAILABLE, types.CodeOf(err))
	assert.True(t, types.IsRetryable(err))
}

func TestQueryBadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing query", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Query(context.Background(), QueryRequest{Query: "x"})
	require.Error(t, err)
	assert.False(t, types.IsRetryable(err))
}

func TestQueryUnreachableBackend(t *testing.T) {
	c := NewClient(config.GraphRAGConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	}, nil)
	_, err := c.Query(context.Background(), QueryRequest{Query: "x"})
	require.Error(t, err)
	assert.Equal(t, types.GRAPHRAG_UNAVAILABLE, types.CodeOf(err))
	assert.True(t, types.IsRetryable(err))
}

func TestInsertDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents/texts", r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(InsertResponse{
			Total:   len(body["documents"]),
			Success: len(body["documents"]),
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.InsertDocuments(context.Background(), []string{"麻婆豆腐的做法", "回锅肉的做法"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Success)
	assert.Zero(t, resp.Failed)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assert.Equal(t, types.HealthStateHealthy, c.Health(context.Background()).State)
}
