package text2sql

import (
	"strings"
	"time"
)

// ChartType identifies how a result set should be displayed.
type ChartType string

const (
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartPie   ChartType = "pie"
	ChartTable ChartType = "table"
)

// Visualization is a display suggestion for a result set.
type Visualization struct {
	Chart ChartType `json:"chart"`
	X     string    `json:"x,omitempty"`
	Y     string    `json:"y,omitempty"`
}

// SuggestVisualization picks a chart from the result shape: label+value
// pairs become bars, time series become lines, small share-of-total sets
// become pies, everything else renders as a table.
func SuggestVisualization(result *QueryResult) Visualization {
	if result == nil || len(result.Rows) == 0 || len(result.Columns) != 2 {
		return Visualization{Chart: ChartTable}
	}

	x, y := result.Columns[0], result.Columns[1]
	if !allNumeric(result.Rows, y) {
		return Visualization{Chart: ChartTable}
	}

	if isTimeLike(result.Rows, x) {
		return Visualization{Chart: ChartLine, X: x, Y: y}
	}
	if len(result.Rows) <= 6 && looksLikeShare(y) {
		return Visualization{Chart: ChartPie, X: x, Y: y}
	}
	if len(result.Rows) <= 15 {
		return Visualization{Chart: ChartBar, X: x, Y: y}
	}
	return Visualization{Chart: ChartTable}
}

func allNumeric(rows []map[string]any, col string) bool {
	for _, row := range rows {
		switch row[col].(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		default:
			return false
		}
	}
	return true
}

func isTimeLike(rows []map[string]any, col string) bool {
	lower := strings.ToLower(col)
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") ||
		strings.Contains(lower, "日期") || strings.Contains(lower, "时间") ||
		strings.Contains(lower, "月份") || strings.Contains(lower, "年份") {
		return true
	}
	for _, row := range rows {
		if _, ok := row[col].(time.Time); ok {
			return true
		}
	}
	return false
}

func looksLikeShare(col string) bool {
	lower := strings.ToLower(col)
	return strings.Contains(lower, "ratio") || strings.Contains(lower, "percent") ||
		strings.Contains(lower, "share") || strings.Contains(lower, "占比") ||
		strings.Contains(lower, "比例")
}
