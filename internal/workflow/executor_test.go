package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestExecutor_RunsLinearGraph(t *testing.T) {
	graph := NewGraph("prepare").
		AddNode("prepare", func(ctx context.Context, s *types.TurnState) (string, error) {
			s.SetMeta("prepared", true)
			return "answer", nil
		}).
		AddNode("answer", func(ctx context.Context, s *types.TurnState) (string, error) {
			s.Answer = "好的"
			return End, nil
		})

	state := types.NewTurnState("s1", "", "你好")
	require.NoError(t, NewExecutor().Run(context.Background(), graph, state))

	assert.Equal(t, []string{"prepare", "answer"}, state.Steps)
	assert.Equal(t, "好的", state.Answer)
}

func TestExecutor_ConditionalBranch(t *testing.T) {
	graph := NewGraph("route").
		AddNode("route", func(ctx context.Context, s *types.TurnState) (string, error) {
			if s.Question == "greeting" {
				return "chat", nil
			}
			return "knowledge", nil
		}).
		AddNode("chat", func(ctx context.Context, s *types.TurnState) (string, error) {
			s.AnswerType = types.AnswerChat
			return End, nil
		}).
		AddNode("knowledge", func(ctx context.Context, s *types.TurnState) (string, error) {
			s.AnswerType = types.AnswerKnowledge
			return End, nil
		})

	chat := types.NewTurnState("s1", "", "greeting")
	require.NoError(t, NewExecutor().Run(context.Background(), graph, chat))
	assert.Equal(t, types.AnswerChat, chat.AnswerType)

	kb := types.NewTurnState("s1", "", "红烧肉的做法")
	require.NoError(t, NewExecutor().Run(context.Background(), graph, kb))
	assert.Equal(t, types.AnswerKnowledge, kb.AnswerType)
}

func TestExecutor_UnknownTransition(t *testing.T) {
	graph := NewGraph("start").
		AddNode("start", func(ctx context.Context, s *types.TurnState) (string, error) {
			return "missing", nil
		})

	err := NewExecutor().Run(context.Background(), graph, types.NewTurnState("s1", "", "q"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.WORKFLOW_NO_SUCH_NODE, ""))
}

func TestExecutor_CycleLimit(t *testing.T) {
	graph := NewGraph("loop").
		AddNode("loop", func(ctx context.Context, s *types.TurnState) (string, error) {
			return "loop", nil
		})

	err := NewExecutor(WithMaxSteps(5)).Run(context.Background(), graph, types.NewTurnState("s1", "", "q"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.WORKFLOW_CYCLE_LIMIT, ""))
}

func TestExecutor_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	graph := NewGraph("flaky").
		AddNodeWithRetry("flaky", func(ctx context.Context, s *types.TurnState) (string, error) {
			attempts++
			if attempts < 3 {
				return "", types.NewRetryableError(types.GRAPHRAG_UNAVAILABLE, "backend busy")
			}
			return End, nil
		}, &RetryPolicy{
			MaxRetries:      3,
			BackoffStrategy: BackoffConstant,
			InitialDelay:    time.Millisecond,
		})

	require.NoError(t, NewExecutor().Run(context.Background(), graph, types.NewTurnState("s1", "", "q")))
	assert.Equal(t, 3, attempts)
}

func TestExecutor_DoesNotRetryPermanentErrors(t *testing.T) {
	attempts := 0
	graph := NewGraph("broken").
		AddNodeWithRetry("broken", func(ctx context.Context, s *types.TurnState) (string, error) {
			attempts++
			return "", types.NewError(types.CYPHER_VALIDATION_FAILED, "write clause")
		}, DefaultRetryPolicy())

	err := NewExecutor().Run(context.Background(), graph, types.NewTurnState("s1", "", "q"))
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_CalculateDelay(t *testing.T) {
	exp := &RetryPolicy{
		BackoffStrategy: BackoffExponential,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        300 * time.Millisecond,
		Multiplier:      2,
	}
	assert.Equal(t, 100*time.Millisecond, exp.CalculateDelay(0))
	assert.Equal(t, 200*time.Millisecond, exp.CalculateDelay(1))
	assert.Equal(t, 300*time.Millisecond, exp.CalculateDelay(2)) // capped

	linear := &RetryPolicy{BackoffStrategy: BackoffLinear, InitialDelay: 50 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, linear.CalculateDelay(1))
}
