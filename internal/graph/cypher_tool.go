package graph

import (
	"context"

	"github.com/jhlu2019/GustoBot-sub001/internal/llm"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// CypherTool answers free-form graph tasks: generate, validate, execute.
type CypherTool struct {
	generator *Generator
	querier   Querier
	logger    *observability.TracedLogger
}

// NewCypherTool creates a CypherTool.
func NewCypherTool(provider llm.Provider, querier Querier, logger *observability.TracedLogger) *CypherTool {
	return &CypherTool{
		generator: NewGenerator(provider, querier.SchemaForPrompt(), logger),
		querier:   querier,
		logger:    logger,
	}
}

// Query generates Cypher for the task and runs it, returning the records.
func (t *CypherTool) Query(ctx context.Context, task string) ([]map[string]any, error) {
	statement, err := t.generator.Generate(ctx, task)
	if err != nil {
		return nil, err
	}
	if t.logger != nil {
		t.logger.Debug(ctx, "running generated cypher", "statement", statement)
	}
	return t.querier.ExecuteRead(ctx, statement, nil)
}

// PredefinedTool answers questions through the template registry: match
// or look up a template, fill its parameters, execute it.
type PredefinedTool struct {
	registry  *Registry
	matcher   *Matcher
	extractor *ParamExtractor
	querier   Querier
	logger    *observability.TracedLogger
}

// NewPredefinedTool creates a PredefinedTool with the built-in registry.
func NewPredefinedTool(provider llm.Provider, querier Querier, logger *observability.TracedLogger) *PredefinedTool {
	registry := NewRegistry()
	return &PredefinedTool{
		registry:  registry,
		matcher:   NewMatcher(registry, DefaultMatchThreshold),
		extractor: NewParamExtractor(provider),
		querier:   querier,
		logger:    logger,
	}
}

// RunByName executes a named template. Parameters missing from provided
// are extracted from the question.
func (t *PredefinedTool) RunByName(ctx context.Context, question, name string, provided map[string]any) ([]map[string]any, error) {
	tmpl, err := t.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return t.run(ctx, question, tmpl, provided)
}

// RunByMatch picks the best-matching template for the question. A
// question below the similarity threshold is a TEMPLATE_MATCH_BELOW_MIN
// error so the caller can fall back to generated Cypher.
func (t *PredefinedTool) RunByMatch(ctx context.Context, question string) ([]map[string]any, error) {
	matches := t.matcher.Match(question, 1)
	if len(matches) == 0 {
		return nil, types.NewError(types.TEMPLATE_MATCH_BELOW_MIN, "no predefined query matches the question")
	}
	if t.logger != nil {
		t.logger.Debug(ctx, "matched predefined query",
			"query_name", matches[0].Name, "similarity", matches[0].Similarity)
	}
	return t.run(ctx, question, matches[0].Template, nil)
}

func (t *PredefinedTool) run(ctx context.Context, question string, tmpl Template, provided map[string]any) ([]map[string]any, error) {
	params, err := t.extractor.Extract(ctx, question, tmpl, provided)
	if err != nil {
		return nil, err
	}
	return t.querier.ExecuteRead(ctx, tmpl.Cypher, params)
}
