// Package router classifies each question into an answering route. An LLM
// classifier runs first; a keyword fallback keeps routing alive when the
// model is unavailable or answers garbage.
package router

import (
	"context"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// graphKeywords signal how-to questions answered from the knowledge graph.
var graphKeywords = []string{
	"怎么做", "如何做", "做法", "步骤", "火候",
	"食材", "原料", "需要什么", "配料", "用什么",
}

// sqlKeywords signal aggregate questions answered from the database.
var sqlKeywords = []string{"统计", "多少", "总数", "数量", "排名"}

// chatGreetings are smalltalk openers routed to the general agent.
var chatGreetings = []string{"你好", "您好", "hi", "hello", "谢谢", "再见", "拜拜"}

// Router picks a route for each turn.
type Router struct {
	provider llm.Provider
	logger   *observability.TracedLogger
}

// New creates a Router. With a nil provider only the keyword rules run.
func New(provider llm.Provider, logger *observability.TracedLogger) *Router {
	return &Router{provider: provider, logger: logger}
}

// Route classifies the question, consulting the conversation window for
// follow-up detection.
func (r *Router) Route(ctx context.Context, question string, history []types.ChatTurn) types.RouteDecision {
	if r.provider != nil {
		decision, err := r.llmRoute(ctx, question, history)
		if err == nil {
			return decision
		}
		if r.logger != nil {
			r.logger.Warn(ctx, "llm routing failed, falling back to rules", "error", err.Error())
		}
	}
	return RuleBasedRoute(question)
}

// llmRoute asks the model for a structured route decision.
func (r *Router) llmRoute(ctx context.Context, question string, history []types.ChatTurn) (types.RouteDecision, error) {
	messages := []llm.Message{llm.NewSystemMessage(prompt.RouterSystem)}
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			messages = append(messages, llm.NewAssistantMessage(turn.Content))
		default:
			messages = append(messages, llm.NewUserMessage(turn.Content))
		}
	}
	messages = append(messages, llm.NewUserMessage(question))

	format := types.NewJSONObjectFormat("route_decision")
	req := llm.CompletionRequest{
		Messages:    messages,
		Temperature: 0,
		Format:      &format,
	}

	var decision types.RouteDecision
	if err := llm.CompleteStructured(ctx, r.provider, req, &decision); err != nil {
		return types.RouteDecision{}, err
	}
	if !decision.Route.IsValid() {
		return types.RouteDecision{}, types.NewError(types.ROUTE_UNKNOWN,
			"llm returned unknown route "+decision.Route.String())
	}
	if decision.Confidence <= 0 || decision.Confidence > 1 {
		decision.Confidence = 0.5
	}
	return decision, nil
}

// RuleBasedRoute classifies a question with keyword rules alone. How-to
// and aggregate keywords score 0.8, smalltalk 0.7, and everything else
// defaults to the document knowledge base at 0.5.
func RuleBasedRoute(question string) types.RouteDecision {
	if strings.TrimSpace(question) == "" {
		return types.RouteDecision{
			Route:      types.RouteAdditional,
			Confidence: 0.7,
			Reason:     "空白输入，需要用户补充信息",
			Heuristic:  true,
		}
	}

	for _, kw := range graphKeywords {
		if strings.Contains(question, kw) {
			return types.RouteDecision{
				Route:      types.RouteGraphRAG,
				Confidence: 0.8,
				Reason:     "命中图谱关键词: " + kw,
				Heuristic:  true,
			}
		}
	}

	for _, kw := range sqlKeywords {
		if strings.Contains(question, kw) {
			return types.RouteDecision{
				Route:      types.RouteText2SQL,
				Confidence: 0.8,
				Reason:     "命中统计关键词: " + kw,
				Heuristic:  true,
			}
		}
	}

	lower := strings.ToLower(strings.TrimSpace(question))
	for _, greeting := range chatGreetings {
		if strings.Contains(lower, greeting) {
			return types.RouteDecision{
				Route:      types.RouteGeneral,
				Confidence: 0.7,
				Reason:     "问候语",
				Heuristic:  true,
			}
		}
	}
	if len([]rune(lower)) < 5 {
		return types.RouteDecision{
			Route:      types.RouteGeneral,
			Confidence: 0.7,
			Reason:     "短句闲聊",
			Heuristic:  true,
		}
	}

	return types.RouteDecision{
		Route:      types.RouteKB,
		Confidence: 0.5,
		Reason:     "默认知识库查询",
		Heuristic:  true,
	}
}
