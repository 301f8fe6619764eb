package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestWithSchemaInstruction_AppendsToSystemMessage(t *testing.T) {
	format := types.NewJSONObjectFormat("route")
	messages := []Message{
		NewSystemMessage("你是路由器。"),
		NewUserMessage("川菜有多少道？"),
	}

	out := withSchemaInstruction(messages, &format)

	assert.Len(t, out, 2)
	assert.Contains(t, out[0].Content, "你是路由器。")
	assert.Contains(t, out[0].Content, "JSON")
	// original untouched
	assert.Equal(t, "你是路由器。", messages[0].Content)
}

func TestWithSchemaInstruction_PrependsWhenNoSystemMessage(t *testing.T) {
	format := types.NewJSONObjectFormat("route")
	out := withSchemaInstruction([]Message{NewUserMessage("好吃吗")}, &format)

	assert.Len(t, out, 2)
	assert.Equal(t, RoleSystem, out[0].Role)
}

func TestWithSchemaInstruction_IncludesSchema(t *testing.T) {
	schema := &types.JSONSchema{
		Type: "object",
		Properties: map[string]*types.JSONSchema{
			"route": {Type: "string"},
		},
		Required: []string{"route"},
	}
	format := types.NewJSONSchemaFormat("route", schema, true)

	out := withSchemaInstruction([]Message{NewUserMessage("q")}, &format)
	assert.Contains(t, out[0].Content, `"route"`)
}
