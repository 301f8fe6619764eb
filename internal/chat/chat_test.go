package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestTemplateReplyBuckets(t *testing.T) {
	cases := []struct {
		message string
		bucket  string
	}{
		{"你好", "greeting"},
		{"Hello there", "greeting"},
		{"谢谢你的帮助", "thanks"},
		{"再见啦", "goodbye"},
		{"今天天气不错", "default"},
	}
	for _, tc := range cases {
		reply := TemplateReply(tc.message)
		assert.Contains(t, templates[tc.bucket], reply, "message %q", tc.message)
	}
}

func TestReplyUsesLLM(t *testing.T) {
	provider := providers.NewMockProvider("你好呀！想学做什么菜？")
	agent := NewAgent(provider, nil)

	answer := agent.Reply(context.Background(), "你好", nil)
	assert.Equal(t, "你好呀！想学做什么菜？", answer)
}

func TestReplyIncludesHistoryWindow(t *testing.T) {
	provider := providers.NewMockProvider("当然记得，你问过回锅肉。")
	agent := NewAgent(provider, nil)

	window := []types.ChatTurn{
		{Role: "user", Content: "回锅肉怎么做？"},
		{Role: "assistant", Content: "先煮后炒。"},
	}
	agent.Reply(context.Background(), "我刚才问了什么？", window)

	calls := provider.Calls()
	require.NotEmpty(t, calls)
	var historyMsg string
	for _, msg := range calls[0].Request.Messages {
		if msg.Role == llm.RoleSystem && msg.Content != "" {
			historyMsg += msg.Content
		}
	}
	assert.Contains(t, historyMsg, "回锅肉怎么做？")
}

func TestReplyFallsBackToTemplateOnError(t *testing.T) {
	provider := providers.NewMockProvider()
	provider.FailWith(types.NewError(types.PROVIDER_UNAVAILABLE, "llm offline"))
	agent := NewAgent(provider, nil)

	answer := agent.Reply(context.Background(), "你好", nil)
	assert.Contains(t, templates["greeting"], answer)
}

func TestReplyWithoutProvider(t *testing.T) {
	agent := NewAgent(nil, nil)
	answer := agent.Reply(context.Background(), "谢谢", nil)
	assert.Contains(t, templates["thanks"], answer)
}

func TestAnswerWithContext(t *testing.T) {
	provider := providers.NewMockProvider("根据资料，麻婆豆腐源自清代成都。")
	agent := NewAgent(provider, nil)

	answer, err := agent.AnswerWithContext(context.Background(),
		"麻婆豆腐的来历？", "麻婆豆腐始创于清代同治年间的成都。", nil)
	require.NoError(t, err)
	assert.Equal(t, "根据资料，麻婆豆腐源自清代成都。", answer)

	calls := provider.Calls()
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1].Request.Messages
	userMsg := last[len(last)-1]
	assert.Contains(t, userMsg.Content, "参考资料：")
	assert.Contains(t, userMsg.Content, "麻婆豆腐始创于清代同治年间的成都。")
}

func TestAnswerWithContextNoProvider(t *testing.T) {
	agent := NewAgent(nil, nil)
	_, err := agent.AnswerWithContext(context.Background(), "q", "ctx", nil)
	require.Error(t, err)
	assert.Equal(t, types.PROVIDER_UNAVAILABLE, types.CodeOf(err))
}
