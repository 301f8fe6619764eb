package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_IsValid(t *testing.T) {
	valid := []Route{
		RouteGeneral, RouteAdditional, RouteKB, RouteGraphRAG,
		RouteImage, RouteFile, RouteText2SQL,
	}
	for _, r := range valid {
		assert.True(t, r.IsValid(), "route %s should be valid", r)
	}
	assert.False(t, Route("recipe-query").IsValid())
	assert.False(t, Route("").IsValid())
}

func TestAnswerType_Cacheable(t *testing.T) {
	assert.True(t, AnswerKnowledge.Cacheable())
	assert.True(t, AnswerChat.Cacheable())
	assert.False(t, AnswerReject.Cacheable())
	assert.False(t, AnswerError.Cacheable())
	assert.False(t, AnswerCache.Cacheable())
}

func TestTurnState_CacheScope(t *testing.T) {
	withUser := NewTurnState("sess-1", "user-7", "红烧肉怎么做？")
	assert.Equal(t, "user-7", withUser.CacheScope())

	anonymous := NewTurnState("sess-1", "", "红烧肉怎么做？")
	assert.Equal(t, "sess-1", anonymous.CacheScope())
}

func TestTurnState_SetMetaDefault(t *testing.T) {
	s := NewTurnState("sess-1", "", "川菜有多少道？")
	s.SetMeta("route", string(RouteText2SQL))
	s.SetMetaDefault("route", string(RouteKB))
	s.SetMetaDefault("cached", false)

	assert.Equal(t, string(RouteText2SQL), s.Metadata["route"])
	assert.Equal(t, false, s.Metadata["cached"])
}

func TestTurnState_AddError(t *testing.T) {
	s := NewTurnState("sess-1", "", "宫保鸡丁的做法")
	s.AddError(nil)
	assert.Empty(t, s.Errors)

	s.AddError(NewError(CYPHER_VALIDATION_FAILED, "write clause detected"))
	assert.Len(t, s.Errors, 1)
	assert.Contains(t, s.Errors[0], "CYPHER_VALIDATION_FAILED")
}
