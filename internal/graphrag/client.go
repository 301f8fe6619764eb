// Package graphrag talks to a LightRAG-style retrieval backend over HTTP.
// The backend owns its own index; this client only issues queries and
// incremental document inserts.
package graphrag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Mode selects the retrieval strategy of the backend.
type Mode string

const (
	ModeNaive  Mode = "naive"
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
	ModeHybrid Mode = "hybrid"
)

// Valid reports whether the mode is one the backend supports.
func (m Mode) Valid() bool {
	switch m {
	case ModeNaive, ModeLocal, ModeGlobal, ModeHybrid:
		return true
	}
	return false
}

// QueryRequest is one retrieval call.
type QueryRequest struct {
	Query string `json:"query"`
	Mode  Mode   `json:"mode"`
	TopK  int    `json:"top_k,omitempty"`
}

// QueryResponse is the backend's answer.
type QueryResponse struct {
	Query    string         `json:"query"`
	Response string         `json:"response"`
	Mode     Mode           `json:"mode"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// InsertResponse summarizes an incremental insert.
type InsertResponse struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Client is an HTTP client for the Graph-RAG backend.
type Client struct {
	baseURL     string
	defaultMode Mode
	topK        int
	http        *http.Client
	logger      *observability.TracedLogger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.GraphRAGConfig, logger *observability.TracedLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	mode := Mode(cfg.DefaultMode)
	if !mode.Valid() {
		mode = ModeHybrid
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 10
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		defaultMode: mode,
		topK:        topK,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Query runs a retrieval query. An empty mode uses the configured default.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if req.Mode == "" {
		req.Mode = c.defaultMode
	}
	if !req.Mode.Valid() {
		return nil, types.NewError(types.GRAPHRAG_MODE_UNSUPPORTED, "unsupported retrieval mode "+string(req.Mode))
	}
	if req.TopK <= 0 {
		req.TopK = c.topK
	}

	var out QueryResponse
	if err := c.post(ctx, "/query", req, &out); err != nil {
		return nil, err
	}
	if out.Query == "" {
		out.Query = req.Query
	}
	if out.Mode == "" {
		out.Mode = req.Mode
	}
	return &out, nil
}

// InsertDocuments pushes documents into the backend index.
func (c *Client) InsertDocuments(ctx context.Context, documents []string) (*InsertResponse, error) {
	body := map[string]any{"documents": documents}
	var out InsertResponse
	if err := c.post(ctx, "/documents/texts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) types.HealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return types.Degraded(fmt.Sprintf("backend returned %d", resp.StatusCode))
	}
	return types.Healthy("")
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return types.WrapError(types.GRAPHRAG_UNAVAILABLE, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return types.WrapError(types.GRAPHRAG_UNAVAILABLE, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.WrapRetryableError(types.GRAPHRAG_UNAVAILABLE, "graphrag backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return types.WrapRetryableError(types.GRAPHRAG_UNAVAILABLE, "failed to read response", err)
	}
	if resp.StatusCode >= 500 {
		return types.NewRetryableError(types.GRAPHRAG_UNAVAILABLE,
			fmt.Sprintf("graphrag backend error %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}
	if resp.StatusCode != http.StatusOK {
		return types.NewError(types.GRAPHRAG_UNAVAILABLE,
			fmt.Sprintf("graphrag request rejected %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return types.WrapError(types.GRAPHRAG_UNAVAILABLE, "unparseable backend response", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
