package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// CompleteStructured runs a completion that must yield JSON matching the
// request's ResponseFormat and unmarshals it into out. When the provider
// has no native JSON mode the schema is appended to the system prompt and
// the JSON is recovered from the raw text, fenced or not.
func CompleteStructured(ctx context.Context, p Provider, req CompletionRequest, out any) error {
	if req.Format == nil {
		f := types.NewJSONObjectFormat("structured")
		req.Format = &f
	}
	if err := req.Format.Validate(); err != nil {
		return types.WrapError(types.PROVIDER_BAD_RESPONSE, "invalid response format", err)
	}

	req.Messages = withSchemaInstruction(req.Messages, req.Format)

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}

	if err := ExtractInto(resp.Message.Content, out); err != nil {
		return NewBadResponseError(p.Name(), err.Error())
	}
	return nil
}

// withSchemaInstruction appends a JSON-only instruction (and the schema,
// when one is given) to the last system message, or prepends one.
func withSchemaInstruction(messages []Message, format *types.ResponseFormat) []Message {
	instruction := "你必须只输出一个合法的 JSON 对象，不要输出任何其他文字。"
	if format.Type == types.ResponseFormatJSONSchema && format.Schema != nil {
		if raw, err := json.Marshal(format.Schema); err == nil {
			instruction = fmt.Sprintf("%s JSON 必须符合以下 schema：\n%s", instruction, raw)
		}
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleSystem {
			out := make([]Message, len(messages))
			copy(out, messages)
			out[i].Content = out[i].Content + "\n\n" + instruction
			return out
		}
	}

	out := make([]Message, 0, len(messages)+1)
	out = append(out, NewSystemMessage(instruction))
	return append(out, messages...)
}
