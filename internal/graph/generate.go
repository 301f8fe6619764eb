package graph

import (
	"context"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// maxGenerateAttempts bounds the generate-validate loop: one initial
// attempt plus one repair with the validator's feedback.
const maxGenerateAttempts = 2

// Generator turns natural-language tasks into validated read-only Cypher.
type Generator struct {
	provider  llm.Provider
	retriever *ExampleRetriever
	schema    string
	logger    *observability.TracedLogger
}

// NewGenerator creates a Generator. schema is the graph schema rendering
// embedded into the generation prompt.
func NewGenerator(provider llm.Provider, schema string, logger *observability.TracedLogger) *Generator {
	return &Generator{
		provider:  provider,
		retriever: NewExampleRetriever(),
		schema:    schema,
		logger:    logger,
	}
}

// Generate produces a Cypher statement for the task and validates it
// before returning. A statement the validator rejects is regenerated once
// with the validation error as feedback.
func (g *Generator) Generate(ctx context.Context, task string) (string, error) {
	system := prompt.CypherGenerationSystem
	if g.schema != "" {
		system += "\n\n图谱 schema：\n" + g.schema
	}
	if examples := g.retriever.GetExamples(task, 5); examples != "" {
		system += "\n\n参考示例：\n" + examples
	}

	messages := []llm.Message{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(task),
	}

	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
			Messages:    messages,
			Temperature: 0,
		})
		if err != nil {
			return "", types.WrapError(types.CYPHER_GENERATION_FAILED, "cypher generation failed", err)
		}

		statement := stripCodeFence(resp.Message.Content)
		if err := ValidateCypher(statement); err != nil {
			lastErr = err
			if g.logger != nil {
				g.logger.Warn(ctx, "generated cypher rejected",
					"attempt", attempt, "error", err.Error())
			}
			messages = append(messages,
				llm.NewAssistantMessage(statement),
				llm.NewUserMessage("上一条 Cypher 未通过校验："+err.Error()+"。请修正后重新输出一条只读查询。"))
			continue
		}
		return statement, nil
	}
	return "", lastErr
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, " \t") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
