package supervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/cache"
	"github.com/jhlu2019/GustoBot-sub001/internal/chat"
	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/embed"
	"github.com/jhlu2019/GustoBot-sub001/internal/guardrail"
	"github.com/jhlu2019/GustoBot-sub001/internal/history"
	"github.com/jhlu2019/GustoBot-sub001/internal/kb"
	"github.com/jhlu2019/GustoBot-sub001/internal/llm/providers"
	"github.com/jhlu2019/GustoBot-sub001/internal/planner"
	"github.com/jhlu2019/GustoBot-sub001/internal/prompt"
	"github.com/jhlu2019/GustoBot-sub001/internal/router"
	"github.com/jhlu2019/GustoBot-sub001/internal/summarize"
	"github.com/jhlu2019/GustoBot-sub001/internal/toolselect"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// kbFakeStore serves canned hits for kb-route tests.
type kbFakeStore struct {
	hits []kb.SearchHit
}

func (s *kbFakeStore) Capabilities() kb.Capabilities {
	return kb.Capabilities{SupportsVector: true}
}
func (s *kbFakeStore) UpsertChunks(ctx context.Context, chunks []kb.Chunk) error { return nil }
func (s *kbFakeStore) DeleteDocument(ctx context.Context, documentID string) error {
	return nil
}
func (s *kbFakeStore) VectorSearch(ctx context.Context, vector []float64, topK int) ([]kb.SearchHit, error) {
	return s.hits, nil
}
func (s *kbFakeStore) KeywordSearch(ctx context.Context, query string, topK int) ([]kb.SearchHit, error) {
	return nil, nil
}
func (s *kbFakeStore) Health(ctx context.Context) types.HealthStatus { return types.Healthy("") }
func (s *kbFakeStore) Close() error                                  { return nil }

func newGraphSupervisor(t *testing.T) (*Supervisor, *history.Manager) {
	t.Helper()

	selectorProvider := providers.NewMockProvider("我来查询做法")
	dispatcher := toolselect.NewDispatcher(nil)
	dispatcher.Register(types.ToolCypherQuery, func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		return types.ToolResult{
			Tool:    inv.Tool,
			SubTask: inv.SubTask.Description,
			Records: []map[string]any{
				{"步骤序号": 1, "步骤说明": "鸡胸肉切丁腌制"},
				{"步骤序号": 2, "步骤说明": "下锅快炒，加入花生米"},
			},
		}
	})

	hist := history.NewManager(history.NewMemoryStore(100), config.HistoryConfig{Window: 6}, nil)
	semCache := cache.NewSemanticCache(cache.NewMemoryBackend(), embed.NewMockEmbedder(8),
		config.CacheConfig{Enabled: true, Threshold: 0.92}, nil)

	s := New(Options{
		Guard:      guardrail.New(nil, false, nil),
		Router:     router.New(nil, nil),
		Planner:    planner.New(nil, nil),
		Selector:   toolselect.New(selectorProvider, nil),
		Dispatcher: dispatcher,
		Summarizer: summarize.NewSummarizer(nil, nil),
		ChatAgent:  chat.NewAgent(nil, nil),
		Cache:      semCache,
		History:    hist,
	})
	return s, hist
}

func TestSmalltalkTurn(t *testing.T) {
	s, hist := newGraphSupervisor(t)

	resp := s.HandleTurn(context.Background(), "s1", "", "你好")
	require.NotNil(t, resp)
	assert.Equal(t, types.AnswerChat, resp.Type)
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, "general-query", resp.Metadata["route"])
	assert.Equal(t, "chat_agent", resp.Metadata["agent"])
	assert.False(t, resp.Cached)

	turns := hist.Window(context.Background(), "s1")
	require.Len(t, turns, 2)
	assert.Equal(t, "你好", turns[0].Content)
}

func TestGraphRouteEndToEnd(t *testing.T) {
	s, _ := newGraphSupervisor(t)

	resp := s.HandleTurn(context.Background(), "s1", "u1", "宫保鸡丁的做法")
	require.NotNil(t, resp)
	assert.Equal(t, types.AnswerKnowledge, resp.Type)
	assert.Contains(t, resp.Answer, "鸡胸肉切丁腌制")
	assert.Contains(t, resp.Answer, "1. ")
	assert.Equal(t, "graphrag-query", resp.Metadata["route"])
	assert.Equal(t, "graph_agent", resp.Metadata["agent"])
	assert.False(t, resp.Cached)
}

func TestGraphRouteWithoutDataApologizes(t *testing.T) {
	selectorProvider := providers.NewMockProvider("我来查询做法")
	dispatcher := toolselect.NewDispatcher(nil)
	dispatcher.Register(types.ToolCypherQuery, func(ctx context.Context, inv toolselect.Invocation) types.ToolResult {
		return types.ToolResult{Tool: inv.Tool, SubTask: inv.SubTask.Description}
	})

	s := New(Options{
		Guard:      guardrail.New(nil, false, nil),
		Router:     router.New(nil, nil),
		Planner:    planner.New(nil, nil),
		Selector:   toolselect.New(selectorProvider, nil),
		Dispatcher: dispatcher,
		Summarizer: summarize.NewSummarizer(nil, nil),
		ChatAgent:  chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "龙须翡翠面的做法")
	assert.Equal(t, prompt.NoRecipeFound, resp.Answer)
	assert.Equal(t, types.AnswerKnowledge, resp.Type)
}

func TestCacheHitShortCircuits(t *testing.T) {
	s, _ := newGraphSupervisor(t)
	ctx := context.Background()

	first := s.HandleTurn(ctx, "s1", "u1", "宫保鸡丁的做法")
	require.False(t, first.Cached)

	second := s.HandleTurn(ctx, "s1", "u1", "宫保鸡丁的做法")
	require.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, types.AnswerCache, second.Type)
	assert.Equal(t, "cache", second.Metadata["route"])
	assert.Equal(t, "cache", second.Metadata["agent"])
	assert.Equal(t, true, second.Metadata["cached"])
}

func TestRejectedTurnNotCached(t *testing.T) {
	// LLM router sends the question to the graph path, whose guard
	// rejects it as out of scope.
	routerProvider := providers.NewMockProvider(
		`{"route":"graphrag-query","confidence":0.9,"reason":"测试"}`,
		`{"route":"graphrag-query","confidence":0.9,"reason":"测试"}`,
	)
	s := New(Options{
		Guard:     guardrail.New(nil, false, nil),
		Router:    router.New(routerProvider, nil),
		ChatAgent: chat.NewAgent(nil, nil),
		Cache: cache.NewSemanticCache(cache.NewMemoryBackend(), embed.NewMockEmbedder(8),
			config.CacheConfig{Enabled: true, Threshold: 0.92}, nil),
	})
	ctx := context.Background()

	resp := s.HandleTurn(ctx, "s1", "", "帮我写一个排序算法")
	assert.Equal(t, prompt.GuardrailRefusal, resp.Answer)
	assert.Equal(t, types.AnswerReject, resp.Type)

	// a second identical question must not be served from the cache
	resp2 := s.HandleTurn(ctx, "s1", "", "帮我写一个排序算法")
	assert.False(t, resp2.Cached)
}

func TestImageRouteDegrades(t *testing.T) {
	routerProvider := providers.NewMockProvider(`{"route":"image-query","confidence":0.9}`)
	s := New(Options{
		Router:    router.New(routerProvider, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "这张图片里是什么菜？")
	assert.Equal(t, prompt.ImageUnsupported, resp.Answer)
	assert.Equal(t, types.AnswerChat, resp.Type)
}

func TestFileRouteDegrades(t *testing.T) {
	routerProvider := providers.NewMockProvider(`{"route":"file-query","confidence":0.9}`)
	s := New(Options{
		Router:    router.New(routerProvider, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "帮我分析这份菜谱文件")
	assert.Equal(t, prompt.FileUnsupported, resp.Answer)
	assert.Equal(t, types.AnswerChat, resp.Type)
}

func TestKBRouteAnswersFromDocuments(t *testing.T) {
	store := &kbFakeStore{hits: []kb.SearchHit{{
		Chunk: kb.Chunk{ID: "c1", Content: "麻婆豆腐始创于清代同治年间的成都万福桥。"},
		Score: 0.95, Source: "vector",
	}}}
	kbService := kb.NewService(store, embed.NewMockEmbedder(8), config.KBConfig{TopK: 3}, nil)

	chatProvider := providers.NewMockProvider("根据资料，麻婆豆腐诞生于清代成都。")
	s := New(Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(chatProvider, nil),
		KBService: kbService,
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "麻婆豆腐的来历是什么呢")
	assert.Equal(t, "kb-query", resp.Metadata["route"])
	assert.Equal(t, "kb_agent", resp.Metadata["agent"])
	assert.Equal(t, types.AnswerKnowledge, resp.Type)
	assert.Equal(t, "根据资料，麻婆豆腐诞生于清代成都。", resp.Answer)
	assert.Equal(t, 1, resp.Metadata["kb_hits"])
}

func TestKBRouteWithoutServiceFallsBackToChat(t *testing.T) {
	s := New(Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "麻婆豆腐的来历是什么呢")
	assert.Equal(t, types.AnswerChat, resp.Type)
	assert.NotEmpty(t, resp.Answer)
}

func TestEmptyQuestionRejected(t *testing.T) {
	s := New(Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "")
	assert.Equal(t, prompt.RejectAnswer, resp.Answer)
	assert.Equal(t, types.AnswerReject, resp.Type)
}

func TestWhitespaceQuestionAsksForDetails(t *testing.T) {
	s := New(Options{
		Router:    router.New(nil, nil),
		ChatAgent: chat.NewAgent(nil, nil),
	})

	resp := s.HandleTurn(context.Background(), "s1", "", "   ")
	assert.Equal(t, types.AnswerChat, resp.Type)
	assert.Equal(t, "additional-query", resp.Metadata["route"])
	assert.NotEmpty(t, resp.Answer)
}
