package providers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
)

// toLangchainMessages converts our messages to langchaingo MessageContent.
func toLangchainMessages(messages []llm.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		case llm.RoleTool:
			role = llms.ChatMessageTypeTool
		default:
			role = llms.ChatMessageTypeHuman
		}
		result = append(result, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return result
}

// fromLangchainResponse converts a langchaingo response to our response type.
func fromLangchainResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        model,
		FinishReason: llm.FinishReasonStop,
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Message = llm.Message{
		Role:    llm.RoleAssistant,
		Content: choice.Content,
	}

	for _, tc := range choice.ToolCalls {
		var name, arguments string
		if tc.FunctionCall != nil {
			name = tc.FunctionCall.Name
			arguments = tc.FunctionCall.Arguments
		}
		out.Message.ToolCalls = append(out.Message.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Type:      tc.Type,
			Name:      name,
			Arguments: arguments,
		})
	}

	switch choice.StopReason {
	case "length", "max_tokens":
		out.FinishReason = llm.FinishReasonLength
	case "tool_calls", "function_call":
		out.FinishReason = llm.FinishReasonToolCalls
	case "content_filter":
		out.FinishReason = llm.FinishReasonContentFilter
	}
	if len(out.Message.ToolCalls) > 0 && out.FinishReason == llm.FinishReasonStop {
		out.FinishReason = llm.FinishReasonToolCalls
	}

	return out
}

// buildCallOptions converts a request to langchaingo call options.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	callOpts := make([]llms.CallOption, 0, 5)
	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(req.TopP))
	}
	if len(req.StopSequences) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(req.StopSequences))
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}
	return callOpts
}

// buildStreamingCallOptions adds a streaming callback to the call options.
func buildStreamingCallOptions(req llm.CompletionRequest, streamFunc func(ctx context.Context, chunk []byte) error) []llms.CallOption {
	return append(buildCallOptions(req), llms.WithStreamingFunc(streamFunc))
}

// toLangchainTools converts tool definitions to langchaingo tools. The
// parameter schema goes over the wire as a plain map.
func toLangchainTools(tools []llm.ToolDef) []llms.Tool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]llms.Tool, 0, len(tools))
	for _, tool := range tools {
		var params any
		if tool.Parameters != nil {
			raw, err := json.Marshal(tool.Parameters)
			if err == nil {
				var m map[string]any
				if json.Unmarshal(raw, &m) == nil {
					params = m
				}
			}
		}
		result = append(result, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return result
}

// buildCallOptionsWithTools adds tool definitions to the call options.
func buildCallOptionsWithTools(req llm.CompletionRequest, tools []llm.ToolDef) []llms.CallOption {
	callOpts := buildCallOptions(req)
	if len(tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(toLangchainTools(tools)))
	}
	return callOpts
}
