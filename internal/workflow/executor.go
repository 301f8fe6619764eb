package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// defaultMaxSteps bounds a single run so a miswired graph cannot loop
// forever.
const defaultMaxSteps = 32

// Executor runs a Graph over a TurnState, one node at a time, with
// per-node tracing, logging, and retry of transient failures.
type Executor struct {
	logger   *observability.TracedLogger
	tracer   trace.Tracer
	maxSteps int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *observability.TracedLogger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMaxSteps overrides the node-visit budget for one run.
func WithMaxSteps(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		tracer:   otel.Tracer("gustobot/workflow"),
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run walks the graph from its entry node until a node returns End. The
// state's step trace records every node visited.
func (e *Executor) Run(ctx context.Context, graph *Graph, state *types.TurnState) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	current := graph.Entry()
	for steps := 0; current != End; steps++ {
		if steps >= e.maxSteps {
			return types.NewError(types.WORKFLOW_CYCLE_LIMIT,
				fmt.Sprintf("run exceeded %d node visits at %q", e.maxSteps, current))
		}
		if err := ctx.Err(); err != nil {
			return types.WrapError(types.WORKFLOW_NODE_FAILED, "run canceled", err)
		}

		node, ok := graph.Node(current)
		if !ok {
			return types.NewError(types.WORKFLOW_NO_SUCH_NODE,
				fmt.Sprintf("transition to unknown node %q", current))
		}

		next, err := e.runNode(ctx, node, state)
		if err != nil {
			return types.WrapError(types.WORKFLOW_NODE_FAILED, node.Name, err)
		}
		state.AddStep(node.Name)
		current = next
	}
	return nil
}

// runNode executes one node inside a span, honoring its retry policy for
// retryable errors.
func (e *Executor) runNode(ctx context.Context, node *Node, state *types.TurnState) (string, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.node",
		trace.WithAttributes(attribute.String("node", node.Name)))
	defer span.End()

	attempts := 1
	if node.Retry != nil {
		attempts += node.Retry.MaxRetries
	}

	var next string
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := node.Retry.CalculateDelay(attempt - 1)
			if e.logger != nil {
				e.logger.Warn(ctx, "retrying node",
					"node", node.Name, "attempt", attempt, "delay", delay.String())
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		start := time.Now()
		next, err = node.Run(ctx, state)
		if err == nil {
			if e.logger != nil {
				e.logger.Debug(ctx, "node completed",
					"node", node.Name, "next", next, "duration", time.Since(start).String())
			}
			span.SetStatus(codes.Ok, "")
			return next, nil
		}
		if !types.IsRetryable(err) {
			break
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if e.logger != nil {
		e.logger.Error(ctx, "node failed", "node", node.Name, "error", err.Error())
	}
	return "", err
}
