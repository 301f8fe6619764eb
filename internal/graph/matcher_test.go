package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherFindsTemplateFromDescription(t *testing.T) {
	registry := NewRegistry()
	m := NewMatcher(registry, DefaultMatchThreshold)

	tmpl, err := registry.Get("dish_instructions")
	require.NoError(t, err)

	matches := m.Match(tmpl.Description, 3)
	require.NotEmpty(t, matches)
	assert.Equal(t, "dish_instructions", matches[0].Name)
	assert.GreaterOrEqual(t, matches[0].Similarity, DefaultMatchThreshold)
}

func TestMatcherRanksBestFirst(t *testing.T) {
	registry := NewRegistry()
	m := NewMatcher(registry, 0.01)

	matches := m.Match("统计最常见的烹饪工艺及使用次数", 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, "most_used_cooking_methods", matches[0].Name)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Similarity, matches[i-1].Similarity)
	}
}

func TestMatcherReturnsNothingForUnrelatedText(t *testing.T) {
	m := NewMatcher(NewRegistry(), DefaultMatchThreshold)
	assert.Empty(t, m.Match("hello quantum physics", 3))
	assert.Empty(t, m.Match("", 3))
	assert.Empty(t, m.Match("红烧肉", 0))
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()

	tmpl, err := registry.Get("ingredient_amount_in_dish")
	require.NoError(t, err)
	assert.Equal(t, []string{"dish_name", "ingredient_name"}, tmpl.RequiredParams())

	_, err = registry.Get("no_such_query")
	assert.Error(t, err)

	all := registry.All()
	assert.Len(t, all, 30)
	for _, tmpl := range all {
		assert.NoError(t, ValidateCypher(tmpl.Cypher), tmpl.Name)
		assert.NotEmpty(t, tmpl.Description, tmpl.Name)
	}
}
