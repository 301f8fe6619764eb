package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// MockCall records one request made against the mock provider.
type MockCall struct {
	Request llm.CompletionRequest
	Tools   []llm.ToolDef
}

// MockProvider implements llm.Provider for tests. Responses are replayed
// in order and wrap around; tool-call responses can be queued separately.
type MockProvider struct {
	mu            sync.Mutex
	responses     []string
	responseIndex int
	toolCalls     [][]llm.ToolCall
	toolCallIndex int
	calls         []MockCall
	failWith      error
}

// NewMockProvider creates a mock provider replaying the given responses.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// QueueToolCalls queues a set of tool calls to be returned by the next
// CompleteWithTools invocation.
func (p *MockProvider) QueueToolCalls(calls ...llm.ToolCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toolCalls = append(p.toolCalls, calls)
}

// FailWith makes every subsequent call return err.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// Calls returns a copy of the recorded calls.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MockCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// Models returns mock model information
func (p *MockProvider) Models(ctx context.Context) ([]llm.ModelInfo, error) {
	return []llm.ModelInfo{
		{
			Name:          "mock-model",
			ContextWindow: 8192,
			MaxOutput:     4096,
			Features:      []string{"chat", "streaming", "tools", "json"},
		},
	}, nil
}

// Complete replays the next configured response.
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Request: req})
	if p.failWith != nil {
		err := p.failWith
		p.mu.Unlock()
		return nil, err
	}
	if len(p.responses) == 0 {
		p.mu.Unlock()
		return nil, llm.NewProviderError("mock", fmt.Errorf("no responses configured"))
	}
	response := p.responses[p.responseIndex%len(p.responses)]
	p.responseIndex++
	p.mu.Unlock()

	return &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        req.Model,
		Message:      llm.NewAssistantMessage(response),
		FinishReason: llm.FinishReasonStop,
		Usage: llm.TokenUsage{
			PromptTokens:     10,
			CompletionTokens: len(response) / 4,
			TotalTokens:      10 + len(response)/4,
		},
	}, nil
}

// CompleteWithTools replays queued tool calls; with none queued it behaves
// like Complete.
func (p *MockProvider) CompleteWithTools(ctx context.Context, req llm.CompletionRequest, tools []llm.ToolDef) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Request: req, Tools: tools})
	if p.failWith != nil {
		err := p.failWith
		p.mu.Unlock()
		return nil, err
	}
	if p.toolCallIndex < len(p.toolCalls) {
		calls := p.toolCalls[p.toolCallIndex]
		p.toolCallIndex++
		p.mu.Unlock()
		return &llm.CompletionResponse{
			ID:    uuid.New().String(),
			Model: req.Model,
			Message: llm.Message{
				Role:      llm.RoleAssistant,
				ToolCalls: calls,
			},
			FinishReason: llm.FinishReasonToolCalls,
		}, nil
	}
	p.mu.Unlock()
	// Complete records the call again; drop the duplicate entry.
	p.mu.Lock()
	p.calls = p.calls[:len(p.calls)-1]
	p.mu.Unlock()
	return p.Complete(ctx, req)
}

// Stream emits the next configured response in 8-byte chunks.
func (p *MockProvider) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	chunkChan := make(chan llm.StreamChunk, 10)
	go func() {
		defer close(chunkChan)
		content := resp.Message.Content
		for i := 0; i < len(content); i += 8 {
			end := i + 8
			if end > len(content) {
				end = len(content)
			}
			select {
			case <-ctx.Done():
				return
			case chunkChan <- llm.StreamChunk{Delta: llm.StreamDelta{Content: content[i:end]}}:
			}
		}
		chunkChan <- llm.StreamChunk{FinishReason: llm.FinishReasonStop}
	}()
	return chunkChan, nil
}

// Health always reports healthy unless a failure is configured.
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return types.Unhealthy(p.failWith.Error())
	}
	return types.Healthy("")
}
