package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestExtractUsesProvidedParams(t *testing.T) {
	e := NewParamExtractor(nil)
	tmpl, _ := NewRegistry().Get("dish_instructions")

	params, err := e.Extract(context.Background(), "红烧肉怎么做？", tmpl,
		map[string]any{"dish_name": "红烧肉"})
	require.NoError(t, err)
	assert.Equal(t, "红烧肉", params["dish_name"])
}

func TestExtractRulesFlavorName(t *testing.T) {
	e := NewParamExtractor(nil)
	tmpl, _ := NewRegistry().Get("dishes_by_flavor")

	params, err := e.Extract(context.Background(), "想吃麻辣口味的菜", tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "麻辣", params["flavor_name"])
}

func TestExtractRulesDishName(t *testing.T) {
	e := NewParamExtractor(nil)
	tmpl, _ := NewRegistry().Get("dish_cook_time")

	params, err := e.Extract(context.Background(), "红烧肉 需要多久", tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "红烧肉", params["dish_name"])
}

func TestExtractLLMFallback(t *testing.T) {
	provider := providers.NewMockProvider(`{"dish_name": "宫保鸡丁", "ingredient_name": "鸡胸肉"}`)
	e := NewParamExtractor(provider)
	tmpl, _ := NewRegistry().Get("ingredient_amount_in_dish")

	params, err := e.Extract(context.Background(), "宫保鸡丁里鸡胸肉放多少？", tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "宫保鸡丁", params["dish_name"])
	assert.Equal(t, "鸡胸肉", params["ingredient_name"])
}

func TestExtractReportsMissingParams(t *testing.T) {
	e := NewParamExtractor(nil)
	tmpl, _ := NewRegistry().Get("step_by_order")

	_, err := e.Extract(context.Background(), "红烧肉第三步怎么做", tmpl, nil)
	require.Error(t, err)
	assert.Equal(t, types.PARAM_MISSING, types.CodeOf(err))
	assert.Contains(t, err.Error(), "step_order")
}

func TestExtractNoParamsTemplate(t *testing.T) {
	e := NewParamExtractor(nil)
	tmpl, _ := NewRegistry().Get("most_popular_flavors")

	params, err := e.Extract(context.Background(), "最流行的口味是什么？", tmpl, nil)
	require.NoError(t, err)
	assert.Empty(t, params)
}
