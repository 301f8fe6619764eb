// Package planner decomposes a question into the sub-tasks the tool layer
// retrieves answers for.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// MaxSubTasks caps a plan. Questions needing more decomposition get their
// extra tasks dropped, not an error.
const MaxSubTasks = 5

// Planner builds retrieval plans.
type Planner struct {
	provider llm.Provider
	logger   *observability.TracedLogger
}

// New creates a Planner.
func New(provider llm.Provider, logger *observability.TracedLogger) *Planner {
	return &Planner{provider: provider, logger: logger}
}

type llmPlan struct {
	Tasks []string `json:"tasks"`
}

// Plan decomposes the question into at most MaxSubTasks ordered sub-tasks.
// When the model fails or returns nothing usable, the question itself
// becomes a single-task plan.
func (p *Planner) Plan(ctx context.Context, question string) []types.SubTask {
	if p.provider == nil {
		return singleTask(question)
	}

	format := types.NewJSONObjectFormat("plan")
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.PlannerSystem),
			llm.NewUserMessage(question),
		},
		Temperature: 0,
		Format:      &format,
	}

	var plan llmPlan
	if err := llm.CompleteStructured(ctx, p.provider, req, &plan); err != nil {
		if p.logger != nil {
			p.logger.Warn(ctx, "planning failed, using single-task plan", "error", err.Error())
		}
		return singleTask(question)
	}

	tasks := make([]types.SubTask, 0, MaxSubTasks)
	for _, desc := range plan.Tasks {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}
		if len(tasks) == MaxSubTasks {
			if p.logger != nil {
				p.logger.Warn(ctx, "plan exceeded task cap, dropping extras",
					"cap", MaxSubTasks, "proposed", len(plan.Tasks))
			}
			break
		}
		tasks = append(tasks, types.SubTask{
			ID:          fmt.Sprintf("task-%d-%s", len(tasks)+1, uuid.New().String()[:8]),
			Description: desc,
		})
	}

	if len(tasks) == 0 {
		return singleTask(question)
	}
	return tasks
}

func singleTask(question string) []types.SubTask {
	return []types.SubTask{{
		ID:          "task-1-" + uuid.New().String()[:8],
		Description: question,
	}}
}
