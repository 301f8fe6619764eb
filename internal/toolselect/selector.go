package toolselect

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Invocation pairs a sub-task with the tool chosen for it and the raw
// JSON arguments the model produced.
type Invocation struct {
	Tool      types.ToolName
	SubTask   types.SubTask
	Arguments string
}

// ParseArguments deserializes the invocation arguments.
func (inv Invocation) ParseArguments(v any) error {
	return json.Unmarshal([]byte(inv.Arguments), v)
}

// ToolFunc executes one invocation and reports its result. Implementations
// put failures in ToolResult.Err instead of returning an error, so one bad
// tool never sinks the whole fan-out.
type ToolFunc func(ctx context.Context, inv Invocation) types.ToolResult

// Selector chooses a retrieval tool per sub-task via LLM tool calling.
type Selector struct {
	provider llm.Provider
	tools    []llm.ToolDef
	logger   *observability.TracedLogger
}

// New creates a Selector over the standard tool definitions.
func New(provider llm.Provider, logger *observability.TracedLogger) *Selector {
	return &Selector{provider: provider, tools: Definitions(), logger: logger}
}

// Select maps each sub-task to one tool invocation. When the model answers
// in prose instead of calling a tool, or names a tool that does not exist,
// the task falls back to cypher_query with the task text as its argument.
func (s *Selector) Select(ctx context.Context, tasks []types.SubTask) ([]Invocation, error) {
	invocations := make([]Invocation, 0, len(tasks))
	for _, task := range tasks {
		inv, err := s.selectOne(ctx, task)
		if err != nil {
			return nil, types.WrapError(types.TOOL_SELECTION_FAILED,
				"tool selection failed for sub-task "+task.ID, err)
		}
		invocations = append(invocations, inv)
	}
	return invocations, nil
}

func (s *Selector) selectOne(ctx context.Context, task types.SubTask) (Invocation, error) {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.ToolSelectSystem),
			llm.NewUserMessage(task.Description),
		},
		Temperature: 0,
	}

	resp, err := s.provider.CompleteWithTools(ctx, req, s.tools)
	if err != nil {
		return Invocation{}, err
	}

	if len(resp.Message.ToolCalls) == 0 {
		return s.fallback(ctx, task, "no tool call in response"), nil
	}

	call := resp.Message.ToolCalls[0]
	name := types.ToolName(call.Name)
	switch name {
	case types.ToolCypherQuery, types.ToolPredefinedCypher, types.ToolGraphRAGQuery, types.ToolText2SQLQuery:
		return Invocation{Tool: name, SubTask: task, Arguments: call.Arguments}, nil
	default:
		return s.fallback(ctx, task, "unknown tool "+call.Name), nil
	}
}

// fallback routes a sub-task to cypher_query when the model gave the
// selector nothing usable.
func (s *Selector) fallback(ctx context.Context, task types.SubTask, reason string) Invocation {
	if s.logger != nil {
		s.logger.Warn(ctx, "tool selection fell back to cypher_query",
			"sub_task", task.ID, "reason", reason)
	}
	args, _ := json.Marshal(map[string]string{"task": task.Description})
	return Invocation{Tool: types.ToolCypherQuery, SubTask: task, Arguments: string(args)}
}

// Dispatcher fans invocations out to their registered tool functions.
type Dispatcher struct {
	funcs  map[types.ToolName]ToolFunc
	logger *observability.TracedLogger
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(logger *observability.TracedLogger) *Dispatcher {
	return &Dispatcher{funcs: make(map[types.ToolName]ToolFunc), logger: logger}
}

// Register binds a tool name to its executor. Later registrations replace
// earlier ones.
func (d *Dispatcher) Register(name types.ToolName, fn ToolFunc) {
	d.funcs[name] = fn
}

// Dispatch runs all invocations concurrently and returns results in the
// invocation order.
func (d *Dispatcher) Dispatch(ctx context.Context, invocations []Invocation) []types.ToolResult {
	results := make([]types.ToolResult, len(invocations))
	var wg sync.WaitGroup
	for i, inv := range invocations {
		wg.Add(1)
		go func(i int, inv Invocation) {
			defer wg.Done()
			fn, ok := d.funcs[inv.Tool]
			if !ok {
				results[i] = types.ToolResult{
					Tool:    inv.Tool,
					SubTask: inv.SubTask.ID,
					Err:     string(types.TOOL_EXECUTION_FAILED) + ": no executor registered for " + string(inv.Tool),
				}
				return
			}
			results[i] = fn(ctx, inv)
		}(i, inv)
	}
	wg.Wait()

	if d.logger != nil {
		failed := 0
		for _, r := range results {
			if r.Err != "" {
				failed++
			}
		}
		if failed > 0 {
			d.logger.Warn(ctx, "tool fan-out completed with failures",
				"total", len(results), "failed", failed)
		}
	}
	return results
}
