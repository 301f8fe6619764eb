package graph

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

var (
	dishNamePattern       = regexp.MustCompile(`(?:菜|菜品|做|叫)?([^\s，。,？?]+)`)
	ingredientNamePattern = regexp.MustCompile(`(?:食材|材料|用|加)([^\s，。,？?]+)`)
	flavorNamePattern     = regexp.MustCompile(`(麻辣|清淡|酸辣|咸鲜|甜味|香辣)`)
)

// ParamExtractor fills template parameters from a question, trying the
// LLM first and falling back to regex rules.
type ParamExtractor struct {
	provider llm.Provider
}

// NewParamExtractor creates a ParamExtractor. provider may be nil, in
// which case only the rules run.
func NewParamExtractor(provider llm.Provider) *ParamExtractor {
	return &ParamExtractor{provider: provider}
}

// Extract resolves every parameter a template requires. Provided values
// win over extraction; a parameter nobody can fill is a PARAM_MISSING
// error naming it.
func (e *ParamExtractor) Extract(ctx context.Context, question string, tmpl Template, provided map[string]any) (map[string]any, error) {
	required := tmpl.RequiredParams()
	if len(required) == 0 {
		return map[string]any{}, nil
	}

	params := make(map[string]any, len(required))
	for k, v := range provided {
		if s, ok := v.(string); !ok || strings.TrimSpace(s) != "" {
			params[k] = v
		}
	}

	missing := missingParams(required, params)
	if len(missing) > 0 && e.provider != nil {
		extracted, err := e.extractWithLLM(ctx, question, tmpl.Name, missing)
		if err == nil {
			for k, v := range extracted {
				if _, ok := params[k]; !ok {
					params[k] = v
				}
			}
		}
	}

	for _, name := range missingParams(required, params) {
		if v, ok := extractWithRules(question, name); ok {
			params[name] = v
		}
	}

	if missing := missingParams(required, params); len(missing) > 0 {
		return nil, types.NewError(types.PARAM_MISSING,
			fmt.Sprintf("template %s missing parameters: %s", tmpl.Name, strings.Join(missing, ", ")))
	}
	return params, nil
}

func missingParams(required []string, params map[string]any) []string {
	var missing []string
	for _, name := range required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func extractWithRules(question, name string) (string, bool) {
	var m []string
	switch name {
	case "dish_name":
		m = dishNamePattern.FindStringSubmatch(question)
	case "ingredient_name":
		m = ingredientNamePattern.FindStringSubmatch(question)
	case "flavor_name":
		m = flavorNamePattern.FindStringSubmatch(question)
	default:
		return "", false
	}
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

func (e *ParamExtractor) extractWithLLM(ctx context.Context, question, queryName string, names []string) (map[string]string, error) {
	user := fmt.Sprintf("用户问题: %s\n查询类型: %s\n需要提取的参数: %s\n\n请以 JSON 返回，形如: {\"参数名\": \"参数值\"}",
		question, queryName, strings.Join(names, ", "))
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(prompt.ParamExtractionSystem),
			llm.NewUserMessage(user),
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, types.WrapError(types.PARAM_EXTRACTION_FAILED, "llm parameter extraction failed", err)
	}

	var raw map[string]any
	if err := llm.ExtractInto(resp.Message.Content, &raw); err != nil {
		return nil, types.WrapError(types.PARAM_EXTRACTION_FAILED, "unparseable extraction response", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s := strings.TrimSpace(fmt.Sprint(v))
		if v != nil && s != "" && s != "<nil>" {
			out[k] = s
		}
	}
	return out, nil
}
