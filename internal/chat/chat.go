// Package chat handles smalltalk turns and knowledge-grounded answers
// that need no retrieval tooling. Without an LLM it falls back to canned
// Chinese replies by message intent.
package chat

import (
	"context"
	"math/rand"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/history"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// template buckets keyed by detected smalltalk intent.
var templates = map[string][]string{
	"greeting": {
		"您好！我是GustoBot，您的智能菜谱助手。有什么菜谱相关的问题吗？",
		"你好！很高兴为您服务。需要推荐菜谱或了解做法吗？",
		"嗨！我可以帮您查找菜谱、了解食材和烹饪技巧哦。",
	},
	"thanks": {
		"不客气！很高兴能帮到您。还有其他菜谱问题吗？",
		"您太客气了！随时为您服务。",
		"很荣幸能帮到您！有任何菜谱问题都可以问我。",
	},
	"goodbye": {
		"再见！祝您烹饪愉快！",
		"拜拜！期待下次为您服务。",
		"再见！做出美味菜肴哦！",
	},
	"default": {
		"我主要专注于帮助您了解菜谱和烹饪知识。有相关问题吗？",
		"作为菜谱助手，我在美食方面可以帮到您。想了解什么菜的做法呢？",
		"我是您的菜谱专家！有什么烹饪问题可以问我。",
	},
}

var (
	greetingWords = []string{"你好", "您好", "hello", "hi", "嗨"}
	thanksWords   = []string{"谢谢", "感谢", "thanks", "thank"}
	goodbyeWords  = []string{"再见", "拜拜", "bye", "goodbye"}
)

// Agent answers chat turns.
type Agent struct {
	provider llm.Provider
	logger   *observability.TracedLogger
}

// NewAgent creates a chat agent. A nil provider answers from templates
// only.
func NewAgent(provider llm.Provider, logger *observability.TracedLogger) *Agent {
	return &Agent{provider: provider, logger: logger}
}

// Reply answers a smalltalk message, using the history window for
// context when an LLM is available.
func (a *Agent) Reply(ctx context.Context, message string, window []types.ChatTurn) string {
	if a.provider == nil {
		return TemplateReply(message)
	}

	messages := []llm.Message{llm.NewSystemMessage(prompt.ChatSystem)}
	if formatted := history.FormatWindow(window); formatted != "" {
		messages = append(messages, llm.NewSystemMessage("对话历史：\n"+formatted))
	}
	messages = append(messages, llm.NewUserMessage(message))

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{Messages: messages, Temperature: 0.7})
	if err != nil {
		if a.logger != nil {
			a.logger.Warn(ctx, "chat generation failed, using template reply", "error", err)
		}
		return TemplateReply(message)
	}
	answer := strings.TrimSpace(resp.Message.Content)
	if answer == "" {
		return TemplateReply(message)
	}
	return answer
}

// AnswerWithContext answers a question from retrieved document context.
func (a *Agent) AnswerWithContext(ctx context.Context, question, context_ string, window []types.ChatTurn) (string, error) {
	if a.provider == nil {
		return "", types.NewError(types.PROVIDER_UNAVAILABLE, "no llm provider configured")
	}

	messages := []llm.Message{llm.NewSystemMessage(prompt.KnowledgeSystem)}
	if formatted := history.FormatWindow(window); formatted != "" {
		messages = append(messages, llm.NewSystemMessage("对话历史：\n"+formatted))
	}
	messages = append(messages, llm.NewUserMessage("参考资料：\n"+context_+"\n\n用户问题："+question))

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{Messages: messages, Temperature: 0.3})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// TemplateReply picks a canned reply for the detected intent bucket.
func TemplateReply(message string) string {
	lower := strings.ToLower(message)
	bucket := "default"
	switch {
	case containsAny(lower, greetingWords):
		bucket = "greeting"
	case containsAny(lower, thanksWords):
		bucket = "thanks"
	case containsAny(lower, goodbyeWords):
		bucket = "goodbye"
	}
	options := templates[bucket]
	return options[rand.Intn(len(options))]
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
