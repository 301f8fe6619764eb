package text2sql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// maxGenerationAttempts bounds the generate-validate loop: one initial
// attempt plus two repairs with the validator's feedback.
const maxGenerationAttempts = 3

// Request is one Text2SQL task.
type Request struct {
	Task         string
	ConnectionID string
	DBType       string
	MaxRows      int
}

// Result is the full outcome of a Text2SQL run.
type Result struct {
	SQL           string         `json:"sql"`
	Columns       []string       `json:"columns"`
	Rows          []map[string]any `json:"rows"`
	Truncated     bool           `json:"truncated"`
	Visualization Visualization  `json:"visualization"`
	Answer        string         `json:"answer"`
}

// Pipeline wires schema retrieval, SQL generation, validation, execution
// and answer formatting.
type Pipeline struct {
	provider llm.Provider
	catalog  *Catalog
	executor Executor
	logger   *observability.TracedLogger
}

// NewPipeline creates a Pipeline.
func NewPipeline(provider llm.Provider, catalog *Catalog, executor Executor, logger *observability.TracedLogger) *Pipeline {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Pipeline{provider: provider, catalog: catalog, executor: executor, logger: logger}
}

// Run executes the full pipeline for one request.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Task) == "" {
		return nil, types.NewError(types.SQL_GENERATION_FAILED, "empty task")
	}
	connectionID := req.ConnectionID
	if connectionID == "" {
		connectionID = "default"
	}

	schemaText, ok := p.catalog.Retrieve(connectionID, req.Task)
	if !ok {
		// fall back to the default schema so unregistered IDs still get
		// grounded generation; execution will reject unknown connections.
		schemaText, ok = p.catalog.Retrieve("default", req.Task)
		if !ok {
			return nil, types.NewError(types.SQL_SCHEMA_RETRIEVAL_FAILED,
				"no schema registered for connection "+connectionID)
		}
	}

	analysis := p.analyze(ctx, req.Task, schemaText)

	statement, err := p.generate(ctx, req.Task, schemaText, analysis)
	if err != nil {
		return nil, err
	}

	queryResult, err := p.executor.Query(ctx, connectionID, statement, req.MaxRows)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SQL:           statement,
		Columns:       queryResult.Columns,
		Rows:          queryResult.Rows,
		Truncated:     queryResult.Truncated,
		Visualization: p.visualize(ctx, queryResult),
	}
	result.Answer = p.formatAnswer(ctx, req.Task, queryResult)
	return result, nil
}

// analyze restates the task as an analytic intent. Failures are not
// fatal; generation then works from the raw task alone.
func (p *Pipeline) analyze(ctx context.Context, task, schemaText string) string {
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.SQLAnalysisSystem),
			llm.NewUserMessage("数据库 schema：\n" + schemaText + "\n\n用户问题：" + task),
		},
		Temperature: 0,
	})
	if err != nil {
		if p.logger != nil {
			p.logger.Warn(ctx, "sql analysis skipped", "error", err.Error())
		}
		return ""
	}
	return strings.TrimSpace(resp.Message.Content)
}

func (p *Pipeline) generate(ctx context.Context, task, schemaText, analysis string) (string, error) {
	user := "数据库 schema：\n" + schemaText + "\n\n"
	if analysis != "" {
		user += "分析结论：" + analysis + "\n\n"
	}
	user += "用户问题：" + task

	messages := []llm.Message{
		llm.NewSystemMessage(prompt.SQLGenerationSystem),
		llm.NewUserMessage(user),
	}

	var lastErr error
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
			Messages:    messages,
			Temperature: 0,
		})
		if err != nil {
			return "", types.WrapError(types.SQL_GENERATION_FAILED, "sql generation failed", err)
		}

		statement := stripSQLFence(resp.Message.Content)
		if err := ValidateSQL(statement); err != nil {
			lastErr = err
			if p.logger != nil {
				p.logger.Warn(ctx, "generated sql rejected",
					"attempt", attempt, "error", err.Error())
			}
			messages = append(messages,
				llm.NewAssistantMessage(statement),
				llm.NewUserMessage("上一条 SQL 未通过校验："+err.Error()+"。请修正后重新输出一条只读查询。"))
			continue
		}
		return statement, nil
	}
	return "", lastErr
}

// visualize asks the model for a chart suggestion from a row sample. A
// failed or nonsensical suggestion falls back to the shape heuristic.
func (p *Pipeline) visualize(ctx context.Context, result *QueryResult) Visualization {
	fallback := SuggestVisualization(result)
	if result == nil || len(result.Rows) == 0 {
		return fallback
	}

	sample := result.Rows
	if len(sample) > 5 {
		sample = sample[:5]
	}
	encoded, err := json.Marshal(sample)
	if err != nil {
		return fallback
	}

	format := types.NewJSONObjectFormat("visualization")
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.SQLVisualizationSystem),
			llm.NewUserMessage("字段：" + strings.Join(result.Columns, "、") + "\n结果样本：" + string(encoded)),
		},
		Temperature: 0,
		Format:      &format,
	}

	var viz Visualization
	if err := llm.CompleteStructured(ctx, p.provider, req, &viz); err != nil {
		if p.logger != nil {
			p.logger.Warn(ctx, "visualization suggestion failed, using heuristic", "error", err.Error())
		}
		return fallback
	}
	switch viz.Chart {
	case ChartBar, ChartLine, ChartPie, ChartTable:
		return viz
	default:
		return fallback
	}
}

// formatAnswer renders rows into Chinese prose; when the model is
// unavailable the rows are summarized mechanically.
func (p *Pipeline) formatAnswer(ctx context.Context, task string, result *QueryResult) string {
	if len(result.Rows) == 0 {
		return "查询完成，但没有返回数据。"
	}

	preview := result.Rows
	if len(preview) > 20 {
		preview = preview[:20]
	}
	encoded, err := json.Marshal(preview)
	if err == nil {
		resp, llmErr := p.provider.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				llm.NewSystemMessage(prompt.SQLAnswerSystem),
				llm.NewUserMessage("用户问题：" + task + "\n查询结果：" + string(encoded)),
			},
			Temperature: 0,
		})
		if llmErr == nil && strings.TrimSpace(resp.Message.Content) != "" {
			return strings.TrimSpace(resp.Message.Content)
		}
	}

	return fmt.Sprintf("查询返回 %d 行数据，字段：%s。", len(result.Rows), strings.Join(result.Columns, "、"))
}

func stripSQLFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			first := strings.TrimSpace(strings.ToLower(s[:idx]))
			if first == "" || first == "sql" || first == "postgresql" {
				s = s[idx+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
