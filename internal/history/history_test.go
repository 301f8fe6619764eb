package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1",
		types.ChatTurn{Role: "user", Content: "麻婆豆腐怎么做？"},
		types.ChatTurn{Role: "assistant", Content: "先炒豆瓣酱。"},
	))

	turns, err := store.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestMemoryStoreCapsTurns(t *testing.T) {
	store := NewMemoryStore(4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "s1",
			types.ChatTurn{Role: "user", Content: fmt.Sprintf("问题 %d", i)}))
	}

	turns, err := store.Recent(ctx, "s1", 100)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "问题 6", turns[0].Content)
	assert.Equal(t, "问题 9", turns[3].Content)
}

func TestMemoryStoreSessionsIsolated(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", types.ChatTurn{Role: "user", Content: "a"}))
	turns, err := store.Recent(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", types.ChatTurn{Role: "user", Content: "a"}))
	require.NoError(t, store.Clear(ctx, "s1"))
	turns, err := store.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestManagerRecordAndWindow(t *testing.T) {
	m := NewManager(NewMemoryStore(100), config.HistoryConfig{Window: 4}, nil)
	ctx := context.Background()

	m.Record(ctx, "s1", "回锅肉用什么肉？", "五花肉。")
	m.Record(ctx, "s1", "要煮多久？", "大约二十分钟。")
	m.Record(ctx, "s1", "配什么蔬菜？", "蒜苗。")

	turns := m.Window(ctx, "s1")
	require.Len(t, turns, 4)
	assert.Equal(t, "要煮多久？", turns[0].Content)
	assert.Equal(t, "蒜苗。", turns[3].Content)
}

func TestRecordStampsTurnTime(t *testing.T) {
	m := NewManager(NewMemoryStore(10), config.HistoryConfig{Window: 4}, nil)
	ctx := context.Background()

	before := time.Now()
	m.Record(ctx, "s1", "回锅肉用什么肉？", "五花肉。")

	turns := m.Window(ctx, "s1")
	require.Len(t, turns, 2)
	for _, turn := range turns {
		assert.False(t, turn.At.Before(before))
		assert.False(t, turn.At.After(time.Now()))
	}

	// stored turns survive the wire encoding with their timestamp
	encoded, err := json.Marshal(turns[0])
	require.NoError(t, err)
	var decoded types.ChatTurn
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, decoded.At.Equal(turns[0].At))
}

func TestManagerEmptySessionID(t *testing.T) {
	m := NewManager(NewMemoryStore(10), config.HistoryConfig{Window: 4}, nil)
	m.Record(context.Background(), "", "q", "a")
	assert.Nil(t, m.Window(context.Background(), ""))
}

func TestFormatWindow(t *testing.T) {
	out := FormatWindow([]types.ChatTurn{
		{Role: "user", Content: "麻婆豆腐辣吗？"},
		{Role: "assistant", Content: "麻辣口味。"},
	})
	assert.Equal(t, "用户: 麻婆豆腐辣吗？\n助手: 麻辣口味。", out)

	assert.Empty(t, FormatWindow(nil))
}
