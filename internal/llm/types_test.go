package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid user message", NewUserMessage("红烧肉怎么做？"), false},
		{"valid system message", NewSystemMessage("你是一位川菜问答助手。"), false},
		{"empty user content", Message{Role: RoleUser}, true},
		{"invalid role", Message{Role: "narrator", Content: "x"}, true},
		{"tool message without call id", Message{Role: RoleTool, Content: "result"}, true},
		{"valid tool result", NewToolResultMessage("call-1", `{"records": []}`), false},
		{
			"assistant with tool calls only",
			Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "cypher_query", Arguments: "{}"}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompletionRequest_Validate(t *testing.T) {
	valid := CompletionRequest{
		Messages:    []Message{NewUserMessage("宫保鸡丁的食材有哪些？")},
		Temperature: 0.2,
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, CompletionRequest{}.Validate())

	hot := valid
	hot.Temperature = 1.5
	assert.Error(t, hot.Validate())
}

func TestToolCall_ParseArguments(t *testing.T) {
	call := ToolCall{
		ID:        "call-1",
		Name:      "predefined_cypher",
		Arguments: `{"query_name": "dish_flavor", "parameters": {"dish_name": "回锅肉"}}`,
	}

	var args struct {
		QueryName  string            `json:"query_name"`
		Parameters map[string]string `json:"parameters"`
	}
	require.NoError(t, call.ParseArguments(&args))
	assert.Equal(t, "dish_flavor", args.QueryName)
	assert.Equal(t, "回锅肉", args.Parameters["dish_name"])

	empty := ToolCall{ID: "call-2", Name: "x"}
	assert.Error(t, empty.ParseArguments(&args))
}

func TestToolDef_Validate(t *testing.T) {
	def := ToolDef{Name: "cypher_query", Description: "生成并执行Cypher查询"}
	assert.NoError(t, def.Validate())

	assert.Error(t, ToolDef{Description: "x"}.Validate())
	assert.Error(t, ToolDef{Name: "x"}.Validate())
}
