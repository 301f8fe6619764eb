package supervisor

import (
	"context"

	"github.com/jhlu2019/GustoBot-sub001/internal/graph"
	"github.com/jhlu2019/GustoBot-sub001/internal/graphrag"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/text2sql"
	"github.com/jhlu2019/GustoBot-sub001/internal/toolselect"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// CypherToolFunc adapts the generated-Cypher tool for dispatch.
func CypherToolFunc(tool *graph.CypherTool) toolselect.ToolFunc {
	return func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		var args struct {
			Task string `json:"task"`
		}
		_ = inv.ParseArguments(&args)
		task := args.Task
		if task == "" {
			task = inv.SubTask.Description
		}

		result := types.ToolResult{Tool: inv.Tool, SubTask: inv.SubTask.Description}
		records, err := tool.Query(ctx, task)
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Records = records
		return result
	}
}

// PredefinedToolFunc adapts the template-Cypher tool for dispatch. A
// named template runs directly; otherwise the question is matched
// against template descriptions.
func PredefinedToolFunc(tool *graph.PredefinedTool) toolselect.ToolFunc {
	return func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		var args struct {
			QueryName  string         `json:"query_name"`
			Parameters map[string]any `json:"parameters"`
		}
		_ = inv.ParseArguments(&args)
		question := inv.SubTask.Description

		result := types.ToolResult{Tool: inv.Tool, SubTask: question}
		var (
			records []map[string]any
			err     error
		)
		if args.QueryName != "" {
			records, err = tool.RunByName(ctx, question, args.QueryName, args.Parameters)
		} else {
			records, err = tool.RunByMatch(ctx, question)
		}
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Records = records
		return result
	}
}

// GraphRAGToolFunc adapts the LightRAG HTTP client for dispatch.
func GraphRAGToolFunc(client *graphrag.Client) toolselect.ToolFunc {
	return func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		var args struct {
			Query string        `json:"query"`
			Mode  graphrag.Mode `json:"mode"`
		}
		_ = inv.ParseArguments(&args)
		query := args.Query
		if query == "" {
			query = inv.SubTask.Description
		}

		result := types.ToolResult{Tool: inv.Tool, SubTask: inv.SubTask.Description}
		resp, err := client.Query(ctx, graphrag.QueryRequest{Query: query, Mode: args.Mode})
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Text = resp.Response
		return result
	}
}

// Text2SQLToolFunc adapts the Text2SQL pipeline for dispatch.
func Text2SQLToolFunc(pipeline *text2sql.Pipeline) toolselect.ToolFunc {
	return func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		var args struct {
			Task         string `json:"task"`
			ConnectionID string `json:"connection_id"`
			DBType       string `json:"db_type"`
			MaxRows      int    `json:"max_rows"`
		}
		_ = inv.ParseArguments(&args)
		task := args.Task
		if task == "" {
			task = inv.SubTask.Description
		}

		result := types.ToolResult{Tool: inv.Tool, SubTask: inv.SubTask.Description}
		res, err := pipeline.Run(ctx, text2sql.Request{
			Task:         task,
			ConnectionID: args.ConnectionID,
			DBType:       args.DBType,
			MaxRows:      args.MaxRows,
		})
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Records = res.Rows
		result.Text = res.Answer
		return result
	}
}

// NewDispatcher registers every available tool adapter. Nil components
// are skipped; their tools then report execution errors when selected.
func NewDispatcher(
	cypher *graph.CypherTool,
	predefined *graph.PredefinedTool,
	rag *graphrag.Client,
	sql *text2sql.Pipeline,
	logger *observability.TracedLogger,
) *toolselect.Dispatcher {
	d := toolselect.NewDispatcher(logger)
	if cypher != nil {
		d.Register(types.ToolCypherQuery, CypherToolFunc(cypher))
	}
	if predefined != nil {
		d.Register(types.ToolPredefinedCypher, PredefinedToolFunc(predefined))
	}
	if rag != nil {
		d.Register(types.ToolGraphRAGQuery, GraphRAGToolFunc(rag))
	}
	if sql != nil {
		d.Register(types.ToolText2SQLQuery, Text2SQLToolFunc(sql))
	}
	return d
}
