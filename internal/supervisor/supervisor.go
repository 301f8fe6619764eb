// Package supervisor orchestrates a chat turn: context preparation,
// semantic cache lookup, scope guarding, routing, retrieval through the
// selected agent, and finalization with cache and history writes.
package supervisor

import (
	"context"
	"strings"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/cache"
	"github.com/jhlu2019/GustoBot-sub001/internal/chat"
	"github.com/jhlu2019/GustoBot-sub001/internal/guardrail"
	"github.com/jhlu2019/GustoBot-sub001/internal/history"
	"github.com/jhlu2019/GustoBot-sub001/internal/kb"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/planner"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/router"
	"github.com/jhlu2019/GustoBot-sub001/internal/summarize"
	"github.com/jhlu2019/GustoBot-sub001/internal/text2sql"
	"github.com/jhlu2019/GustoBot-sub001/internal/toolselect"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
	"github.com/jhlu2019/GustoBot-sub001/internal/workflow"
)

// node names of the turn graph.
const (
	nodePrepare    = "prepare_context"
	nodeCheckCache = "check_cache"
	nodeGuard      = "guard"
	nodeRoute      = "route"
	nodeGraph      = "graph_query"
	nodeKB         = "kb_query"
	nodeSQL        = "sql_query"
	nodeGeneral    = "general_chat"
	nodeImage      = "image_query"
	nodeFile       = "file_query"
	nodeReject     = "reject"
	nodeFinalize   = "finalize"
)

// Supervisor runs the per-turn workflow graph.
type Supervisor struct {
	guard      *guardrail.Guardrail
	router     *router.Router
	planner    *planner.Planner
	selector   *toolselect.Selector
	dispatcher *toolselect.Dispatcher
	summarizer *summarize.Summarizer
	chatAgent  *chat.Agent
	kbService  *kb.Service
	sql        *text2sql.Pipeline
	cache      *cache.SemanticCache
	history    *history.Manager
	executor   *workflow.Executor
	logger     *observability.TracedLogger
	graph      *workflow.Graph
}

// Options collects the supervisor's collaborators. Cache, history, kb
// and sql may be nil; their routes then degrade gracefully.
type Options struct {
	Guard      *guardrail.Guardrail
	Router     *router.Router
	Planner    *planner.Planner
	Selector   *toolselect.Selector
	Dispatcher *toolselect.Dispatcher
	Summarizer *summarize.Summarizer
	ChatAgent  *chat.Agent
	KBService  *kb.Service
	SQL        *text2sql.Pipeline
	Cache      *cache.SemanticCache
	History    *history.Manager
	Logger     *observability.TracedLogger
}

// New builds a supervisor and its turn graph.
func New(opts Options) *Supervisor {
	s := &Supervisor{
		guard:      opts.Guard,
		router:     opts.Router,
		planner:    opts.Planner,
		selector:   opts.Selector,
		dispatcher: opts.Dispatcher,
		summarizer: opts.Summarizer,
		chatAgent:  opts.ChatAgent,
		kbService:  opts.KBService,
		sql:        opts.SQL,
		cache:      opts.Cache,
		history:    opts.History,
		executor:   workflow.NewExecutor(workflow.WithLogger(opts.Logger)),
		logger:     opts.Logger,
	}
	s.graph = s.buildGraph()
	return s
}

func (s *Supervisor) buildGraph() *workflow.Graph {
	return workflow.NewGraph(nodePrepare).
		AddNode(nodePrepare, s.prepareContext).
		AddNode(nodeCheckCache, s.checkCache).
		AddNode(nodeGuard, s.guardNode).
		AddNode(nodeRoute, s.routeNode).
		AddNode(nodeGraph, s.graphNode).
		AddNode(nodeKB, s.kbNode).
		AddNode(nodeSQL, s.sqlNode).
		AddNode(nodeGeneral, s.generalNode).
		AddNode(nodeImage, s.imageNode).
		AddNode(nodeFile, s.fileNode).
		AddNode(nodeReject, s.rejectNode).
		AddNode(nodeFinalize, s.finalizeNode)
}

// HandleTurn answers one user question within a session.
func (s *Supervisor) HandleTurn(ctx context.Context, sessionID, userID, question string) *types.ChatResponse {
	state := types.NewTurnState(sessionID, userID, question)

	if err := s.executor.Run(ctx, s.graph, state); err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "turn workflow failed", "error", err, "session_id", sessionID)
		}
		state.Answer = prompt.ErrorAnswer
		state.AnswerType = types.AnswerError
		state.AddError(err)
		s.finalizeState(ctx, state)
	}

	return &types.ChatResponse{
		SessionID: state.SessionID,
		Answer:    state.Answer,
		Type:      state.AnswerType,
		Cached:    state.Cached,
		Metadata:  state.Metadata,
		Timestamp: time.Now(),
	}
}

// prepareContext loads the session's history window into the state. A
// whitespace-only question is not rejected here; the router sends it to
// the additional-info path to ask for details.
func (s *Supervisor) prepareContext(ctx context.Context, state *types.TurnState) (string, error) {
	if state.Question == "" {
		state.Answer = prompt.RejectAnswer
		state.AnswerType = types.AnswerReject
		state.SetMeta("reason", "empty question")
		return nodeFinalize, nil
	}
	if s.history != nil {
		state.History = s.history.Window(ctx, state.SessionID)
	}
	return nodeCheckCache, nil
}

// guardNode scopes the knowledge-graph path: out-of-scope questions are
// rejected before planning. Smalltalk and document routes never pass
// through here.
func (s *Supervisor) guardNode(ctx context.Context, state *types.TurnState) (string, error) {
	if s.guard == nil {
		return nodeGraph, nil
	}
	decision := s.guard.Check(ctx, state.Question)
	if !decision.Proceed {
		state.SetMeta("reason", decision.Reason)
		return nodeReject, nil
	}
	return nodeGraph, nil
}

// checkCache short-circuits the turn on a semantic cache hit.
func (s *Supervisor) checkCache(ctx context.Context, state *types.TurnState) (string, error) {
	if s.cache == nil {
		return nodeRoute, nil
	}
	hit, ok := s.cache.Lookup(ctx, state.CacheScope(), state.Question)
	if !ok {
		return nodeRoute, nil
	}
	state.Answer = hit.Answer
	state.AnswerType = types.AnswerCache
	state.Cached = true
	state.SetMeta("agent", "cache")
	state.SetMeta("cache_similarity", hit.Similarity)
	state.SetMeta("cached_question", hit.Question)
	return nodeFinalize, nil
}

// routeNode picks the answering path for the question.
func (s *Supervisor) routeNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.Decision = s.router.Route(ctx, state.Question, state.History)

	switch state.Decision.Route {
	case types.RouteGraphRAG:
		return nodeGuard, nil
	case types.RouteKB:
		return nodeKB, nil
	case types.RouteText2SQL:
		return nodeSQL, nil
	case types.RouteImage:
		return nodeImage, nil
	case types.RouteFile:
		return nodeFile, nil
	case types.RouteGeneral, types.RouteAdditional:
		return nodeGeneral, nil
	default:
		return nodeGeneral, nil
	}
}

// graphNode answers via knowledge-graph retrieval: plan sub-tasks,
// select a tool per task, dispatch them in parallel and summarize.
func (s *Supervisor) graphNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMeta("agent", "graph_agent")
	state.Plan = s.planner.Plan(ctx, state.Question)

	invocations, err := s.selector.Select(ctx, state.Plan)
	if err != nil {
		state.AddError(err)
		state.Answer = prompt.ErrorAnswer
		state.AnswerType = types.AnswerError
		return nodeFinalize, nil
	}

	state.Results = s.dispatcher.Dispatch(ctx, invocations)
	state.Answer = s.summarizer.Summarize(ctx, state.Question, state.Results)
	if state.Answer == summarize.NoData {
		state.Answer = prompt.NoRecipeFound
	}
	state.AnswerType = types.AnswerKnowledge
	return nodeFinalize, nil
}

// kbNode answers from the document knowledge base.
func (s *Supervisor) kbNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMeta("agent", "kb_agent")
	if s.kbService == nil {
		return nodeGeneral, nil
	}

	hits, err := s.kbService.Search(ctx, state.Question, 0)
	if err != nil {
		state.AddError(err)
		return nodeGeneral, nil
	}
	if len(hits) == 0 {
		state.Answer = "厨友您好～知识库里暂时没有找到相关资料，您可以换个问法，或者问问具体菜品的做法！"
		state.AnswerType = types.AnswerKnowledge
		return nodeFinalize, nil
	}

	sections := make([]string, len(hits))
	for i, hit := range hits {
		sections[i] = hit.Chunk.Content
	}
	answer, err := s.chatAgent.AnswerWithContext(ctx, state.Question, strings.Join(sections, "\n\n"), state.History)
	if err != nil {
		state.AddError(err)
		state.Answer = prompt.ErrorAnswer
		state.AnswerType = types.AnswerError
		return nodeFinalize, nil
	}
	state.SetMeta("kb_hits", len(hits))
	state.Answer = answer
	state.AnswerType = types.AnswerKnowledge
	return nodeFinalize, nil
}

// sqlNode answers statistics questions through the Text2SQL pipeline.
func (s *Supervisor) sqlNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMeta("agent", "text2sql_agent")
	if s.sql == nil {
		return nodeGraph, nil
	}

	result, err := s.sql.Run(ctx, text2sql.Request{Task: state.Question})
	if err != nil {
		state.AddError(err)
		// graph retrieval can often still answer aggregate questions
		return nodeGraph, nil
	}
	state.SetMeta("sql", result.SQL)
	state.SetMeta("visualization", result.Visualization)
	state.Results = append(state.Results, types.ToolResult{
		Tool:    types.ToolText2SQLQuery,
		SubTask: state.Question,
		Records: result.Rows,
		Text:    result.Answer,
	})
	state.Answer = result.Answer
	state.AnswerType = types.AnswerKnowledge
	return nodeFinalize, nil
}

// generalNode handles smalltalk and anything without a better route.
func (s *Supervisor) generalNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMetaDefault("agent", "chat_agent")
	state.Answer = s.chatAgent.Reply(ctx, state.Question, state.History)
	state.AnswerType = types.AnswerChat
	return nodeFinalize, nil
}

// imageNode degrades image questions to a canned reply.
func (s *Supervisor) imageNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMeta("agent", "chat_agent")
	state.Answer = prompt.ImageUnsupported
	state.AnswerType = types.AnswerChat
	return nodeFinalize, nil
}

// fileNode degrades file questions to a canned reply.
func (s *Supervisor) fileNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.SetMeta("agent", "chat_agent")
	state.Answer = prompt.FileUnsupported
	state.AnswerType = types.AnswerChat
	return nodeFinalize, nil
}

// rejectNode answers questions the guardrail refused.
func (s *Supervisor) rejectNode(ctx context.Context, state *types.TurnState) (string, error) {
	state.Answer = prompt.GuardrailRefusal
	state.AnswerType = types.AnswerReject
	return nodeFinalize, nil
}

// finalizeNode stamps response metadata, writes the cache and records
// history.
func (s *Supervisor) finalizeNode(ctx context.Context, state *types.TurnState) (string, error) {
	s.finalizeState(ctx, state)
	return workflow.End, nil
}

func (s *Supervisor) finalizeState(ctx context.Context, state *types.TurnState) {
	if state.AnswerType == "" {
		state.AnswerType = types.AnswerChat
	}
	route := state.Decision.Route.String()
	if state.Cached {
		route = "cache"
	}
	state.SetMeta("route", route)
	state.SetMeta("confidence", state.Decision.Confidence)
	state.SetMeta("cached", state.Cached)
	state.SetMeta("timestamp", time.Now().Format(time.RFC3339))
	if state.Decision.Reason != "" {
		state.SetMetaDefault("reason", state.Decision.Reason)
	}

	if s.cache != nil && !state.Cached && state.AnswerType.Cacheable() {
		s.cache.Store(ctx, state.CacheScope(), state.Question, state.Answer, state.AnswerType)
	}
	if s.history != nil && state.Answer != "" {
		s.history.Record(ctx, state.SessionID, state.Question, state.Answer)
	}
}
