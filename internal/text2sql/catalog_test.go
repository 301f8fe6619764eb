package text2sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveScoresRelevantTables(t *testing.T) {
	c := DefaultCatalog()

	schema, ok := c.Retrieve("default", "dishes 表里有多少麻辣口味的菜？")
	require.True(t, ok)
	assert.Contains(t, schema, "CREATE TABLE dishes")
	assert.Contains(t, schema, "-- 口味，如麻辣、咸鲜")
}

func TestRetrieveFallsBackToFullSchema(t *testing.T) {
	c := DefaultCatalog()

	// no keyword hits: every table stays in context
	schema, ok := c.Retrieve("default", "你好")
	require.True(t, ok)
	assert.Contains(t, schema, "CREATE TABLE dishes")
	assert.Contains(t, schema, "CREATE TABLE ingredients")
	assert.Contains(t, schema, "CREATE TABLE dish_ingredients")
	assert.Contains(t, schema, "CREATE TABLE query_logs")
	assert.Contains(t, schema, "dish_ingredients.dish_id references dishes.id")
}

func TestRetrieveUnknownConnection(t *testing.T) {
	c := DefaultCatalog()
	_, ok := c.Retrieve("analytics", "统计")
	assert.False(t, ok)
}

func TestScoreTableWeights(t *testing.T) {
	table := Table{
		Name:        "dishes",
		Description: "菜品主表",
		Columns: []Column{
			{Name: "flavor", Description: "口味"},
		},
	}
	assert.InDelta(t, 2.0, scoreTable(table, []string{"dishes"}), 1e-9)
	assert.InDelta(t, 1.5, scoreTable(table, []string{"flavor"}), 1e-9)
	assert.InDelta(t, 0.75, scoreTable(table, []string{"口味"}), 1e-9)
	assert.Zero(t, scoreTable(table, []string{"users"}))
}

func TestExtractKeywordsDropsStopWords(t *testing.T) {
	kws := extractKeywords("查询所有 dishes 的 flavor 数据")
	assert.Contains(t, kws, "dishes")
	assert.Contains(t, kws, "flavor")
	assert.NotContains(t, kws, "查询")
	assert.NotContains(t, kws, "所有")
	assert.NotContains(t, kws, "数据")
}
