package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
)

func TestPlanDecomposesQuestion(t *testing.T) {
	provider := providers.NewMockProvider(`{"tasks": ["查询麻婆豆腐的食材", "查询麻婆豆腐的做法步骤"]}`)
	p := New(provider, nil)

	tasks := p.Plan(context.Background(), "麻婆豆腐需要什么食材，怎么做？")
	require.Len(t, tasks, 2)
	assert.Equal(t, "查询麻婆豆腐的食材", tasks[0].Description)
	assert.Equal(t, "查询麻婆豆腐的做法步骤", tasks[1].Description)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestPlanCapsTaskCount(t *testing.T) {
	provider := providers.NewMockProvider(`{"tasks": ["一", "二", "三", "四", "五", "六", "七"]}`)
	p := New(provider, nil)

	tasks := p.Plan(context.Background(), "川菜有哪些口味、做法、食材、营养、步骤、历史和流派？")
	assert.Len(t, tasks, MaxSubTasks)
	assert.Equal(t, "五", tasks[MaxSubTasks-1].Description)
}

func TestPlanFallsBackToSingleTask(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		provider := providers.NewMockProvider()
		provider.FailWith(assert.AnError)
		p := New(provider, nil)

		tasks := p.Plan(context.Background(), "红烧肉怎么做？")
		require.Len(t, tasks, 1)
		assert.Equal(t, "红烧肉怎么做？", tasks[0].Description)
	})

	t.Run("empty plan", func(t *testing.T) {
		provider := providers.NewMockProvider(`{"tasks": []}`)
		p := New(provider, nil)

		tasks := p.Plan(context.Background(), "红烧肉怎么做？")
		require.Len(t, tasks, 1)
		assert.Equal(t, "红烧肉怎么做？", tasks[0].Description)
	})

	t.Run("blank entries skipped", func(t *testing.T) {
		provider := providers.NewMockProvider(`{"tasks": ["  ", "查询宫保鸡丁的口味"]}`)
		p := New(provider, nil)

		tasks := p.Plan(context.Background(), "宫保鸡丁是什么口味？")
		require.Len(t, tasks, 1)
		assert.Equal(t, "查询宫保鸡丁的口味", tasks[0].Description)
	})
}
