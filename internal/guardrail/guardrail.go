// Package guardrail gates incoming questions to the culinary scope before
// any expensive planning or retrieval runs.
package guardrail

import (
	"context"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// heuristicKeywords is the culinary lexicon. A question containing any of
// these is in scope without consulting the LLM.
var heuristicKeywords = []string{
	"菜", "菜谱", "食材", "烹饪", "做法", "步骤", "口味",
	"炒", "煮", "炖", "蒸", "统计", "多少", "用量", "营养", "功效",
}

// Decision is the guardrail verdict for one question.
type Decision struct {
	// Proceed is true when the turn should continue to planning.
	Proceed bool
	// Heuristic is true when the lexicon alone admitted the question.
	Heuristic bool
	// Reason explains a refusal.
	Reason string
}

// llmVerdict is the structured LLM response.
type llmVerdict struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Guardrail combines the keyword heuristics with an optional LLM scope
// check. Heuristics win: a question the lexicon admits is never refused
// by the LLM, and an LLM failure fails open.
type Guardrail struct {
	provider   llm.Provider
	llmEnabled bool
	logger     *observability.TracedLogger
}

// New creates a Guardrail. provider may be nil when llmEnabled is false.
func New(provider llm.Provider, llmEnabled bool, logger *observability.TracedLogger) *Guardrail {
	return &Guardrail{
		provider:   provider,
		llmEnabled: llmEnabled,
		logger:     logger,
	}
}

// Check decides whether a question is in scope. A lexicon hit accepts
// immediately; the LLM is only consulted for questions the heuristics
// cannot place.
func (g *Guardrail) Check(ctx context.Context, question string) Decision {
	if heuristicAccept(question) {
		return Decision{Proceed: true, Heuristic: true}
	}

	if !g.llmEnabled || g.provider == nil {
		return Decision{Proceed: false, Reason: "不在菜谱范围内"}
	}

	verdict, err := g.llmCheck(ctx, question)
	if err != nil {
		// Fail open: an unavailable judge must not block service.
		if g.logger != nil {
			g.logger.Warn(ctx, "guardrail llm check failed, failing open", "error", err.Error())
		}
		return Decision{Proceed: true}
	}

	if verdict.Decision == "planner" {
		return Decision{Proceed: true}
	}
	return Decision{Proceed: false, Reason: verdict.Reason}
}

// llmCheck asks the model for a planner/end verdict.
func (g *Guardrail) llmCheck(ctx context.Context, question string) (*llmVerdict, error) {
	schema := &types.JSONSchema{
		Type: "object",
		Properties: map[string]*types.JSONSchema{
			"decision": {Type: "string", Enum: []any{"planner", "end"}},
			"reason":   {Type: "string"},
		},
		Required: []string{"decision"},
	}
	format := types.NewJSONSchemaFormat("guardrail_decision", schema, true)

	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.GuardrailSystem),
			llm.NewUserMessage(question),
		},
		Temperature: 0,
		Format:      &format,
	}

	var verdict llmVerdict
	if err := llm.CompleteStructured(ctx, g.provider, req, &verdict); err != nil {
		return nil, err
	}
	if verdict.Decision != "planner" && verdict.Decision != "end" {
		return nil, types.NewError(types.PROVIDER_BAD_RESPONSE,
			"guardrail verdict must be planner or end")
	}
	return &verdict, nil
}

// heuristicAccept reports whether the lexicon admits the question: a
// keyword hit or an explicit question mark.
func heuristicAccept(question string) bool {
	for _, kw := range heuristicKeywords {
		if strings.Contains(question, kw) {
			return true
		}
	}
	return strings.HasSuffix(question, "?") || strings.HasSuffix(question, "？")
}
