// Package summarize turns raw tool results into the final answer text:
// records are reduced to readable Chinese sections, then an LLM renders
// the cook-facing reply from them.
package summarize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// NoData is the sentinel returned when no tool result carried anything
// worth summarizing. Callers substitute their own apology text for it.
const NoData = "No data to summarize."

// Summarizer renders tool results into an answer.
type Summarizer struct {
	provider llm.Provider
	logger   *observability.TracedLogger
}

// NewSummarizer creates a summarizer. A nil provider falls back to the
// formatted facts without an LLM pass.
func NewSummarizer(provider llm.Provider, logger *observability.TracedLogger) *Summarizer {
	return &Summarizer{provider: provider, logger: logger}
}

// Summarize produces the final answer for a question from tool results.
func (s *Summarizer) Summarize(ctx context.Context, question string, results []types.ToolResult) string {
	facts := FormatResults(results)
	if facts == NoData {
		return facts
	}
	if s.provider == nil {
		return facts
	}

	req := llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.SummarizeSystem),
			llm.NewUserMessage(fmt.Sprintf("事实信息：\n%s\n\n用户问题：%s", facts, question)),
		},
		Temperature: 0.3,
	}
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(ctx, "summary generation failed, returning formatted facts", "error", err)
		}
		return facts
	}
	answer := strings.TrimSpace(resp.Message.Content)
	if answer == "" {
		return facts
	}
	return answer
}

// FormatResults reduces tool results into sectioned Chinese text:
// narrative passages, formatted data rows, and query errors.
func FormatResults(results []types.ToolResult) string {
	var narrative, metrics, errors []string

	for _, result := range results {
		label := result.SubTask

		if result.Err != "" {
			if label != "" {
				errors = append(errors, label+"："+result.Err)
			} else {
				errors = append(errors, result.Err)
			}
			continue
		}

		if text := strings.TrimSpace(result.Text); text != "" {
			narrative = append(narrative, text)
		}

		if len(result.Records) > 0 {
			formatted := formatRows(result.Records)
			if formatted != "" {
				if label != "" {
					metrics = append(metrics, label+"：\n"+formatted)
				} else {
					metrics = append(metrics, formatted)
				}
			}
		}
	}

	var sections []string
	if len(narrative) > 0 {
		sections = append(sections, "### 川菜概览\n"+strings.Join(narrative, "\n\n"))
	}
	if len(metrics) > 0 {
		sections = append(sections, "### 数据统计\n"+strings.Join(metrics, "\n\n"))
	}
	if len(errors) > 0 {
		bullets := make([]string, len(errors))
		for i, msg := range errors {
			bullets[i] = "- " + msg
		}
		sections = append(sections, "### 查询提示\n"+strings.Join(bullets, "\n"))
	}

	summary := strings.TrimSpace(strings.Join(sections, "\n\n"))
	if summary == "" {
		return NoData
	}
	return summary
}

// formatRows renders records. Cooking steps show as a numbered list,
// ingredient rows show name and amount with main ingredients starred,
// anything else lists every field.
func formatRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return ""
	}
	if len(rows) == 1 {
		return formatSingleRow(rows[0])
	}

	isSteps := allRowsHave(rows, "步骤序号", "步骤说明")
	isIngredients := allRowsHave(rows, "食材", "用量")

	lines := make([]string, 0, len(rows))
	for idx, row := range rows {
		switch {
		case isSteps:
			num := row["步骤序号"]
			if num == nil {
				num = idx + 1
			}
			lines = append(lines, fmt.Sprintf("%v. %v", num, valueOrEmpty(row["步骤说明"])))
		case isIngredients:
			marker := "  "
			if relation, ok := row["关系类型"].(string); ok && strings.Contains(relation, "MAIN") {
				marker = "★ "
			}
			lines = append(lines, fmt.Sprintf("%s%v：%v", marker, valueOrEmpty(row["食材"]), valueOrEmpty(row["用量"])))
		default:
			lines = append(lines, fmt.Sprintf("%d. %s", idx+1, joinFields(row, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func formatSingleRow(row map[string]any) string {
	if len(row) == 1 {
		for key, value := range row {
			return fmt.Sprintf("%s：%v", key, value)
		}
	}
	return joinFields(row, "; ")
}

// joinFields renders a row's fields in sorted key order so output is
// deterministic.
func joinFields(row map[string]any, sep string) string {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s：%v", key, row[key])
	}
	return strings.Join(parts, sep)
}

func allRowsHave(rows []map[string]any, keys ...string) bool {
	for _, row := range rows {
		for _, key := range keys {
			if _, ok := row[key]; !ok {
				return false
			}
		}
	}
	return true
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
