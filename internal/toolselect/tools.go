// Package toolselect maps planner sub-tasks onto the retrieval tools that
// can answer them, using LLM tool calling with a rule-based fallback.
package toolselect

import (
	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Definitions returns the tool surface exposed to the model. Descriptions
// are in Chinese because the selector prompt and questions are.
func Definitions() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        string(types.ToolCypherQuery),
			Description: "根据自然语言任务生成并执行Cypher图查询，适用于菜谱、食材、做法等知识图谱问题。",
			Parameters: &types.JSONSchema{
				Type: "object",
				Properties: map[string]*types.JSONSchema{
					"task": {Type: "string", Description: "需要查询的自然语言任务描述"},
				},
				Required: []string{"task"},
			},
		},
		{
			Name:        string(types.ToolPredefinedCypher),
			Description: "执行预定义的Cypher查询模板，适用于常见的菜谱属性、食材用量、统计类问题。",
			Parameters: &types.JSONSchema{
				Type: "object",
				Properties: map[string]*types.JSONSchema{
					"query_name": {Type: "string", Description: "预定义查询模板的名称"},
					"parameters": {
						Type:                 "object",
						Description:          "模板所需的参数，如dish_name、ingredient_name",
						AdditionalProperties: boolPtr(true),
					},
				},
				Required: []string{"query_name"},
			},
		},
		{
			Name:        string(types.ToolGraphRAGQuery),
			Description: "通过图增强检索回答需要跨文档综合、总结或对比的开放性烹饪问题。",
			Parameters: &types.JSONSchema{
				Type: "object",
				Properties: map[string]*types.JSONSchema{
					"query": {Type: "string", Description: "需要检索的问题"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        string(types.ToolText2SQLQuery),
			Description: "将自然语言转换为SQL并在业务数据库上执行，适用于统计、排名、数量类问题。",
			Parameters: &types.JSONSchema{
				Type: "object",
				Properties: map[string]*types.JSONSchema{
					"task":          {Type: "string", Description: "需要统计分析的自然语言任务"},
					"connection_id": {Type: "string", Description: "目标数据库连接标识"},
					"db_type":       {Type: "string", Description: "数据库类型，如postgres"},
					"max_rows":      {Type: "integer", Description: "返回的最大行数"},
				},
				Required: []string{"task"},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
