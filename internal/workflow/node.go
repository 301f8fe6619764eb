package workflow

import (
	"context"
	"math"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// End is the sentinel next-node name that terminates a run.
const End = "__end__"

// NodeFunc executes one node of the turn graph. It mutates the state and
// returns the name of the next node, or End to stop.
type NodeFunc func(ctx context.Context, state *types.TurnState) (string, error)

// NodeStatus represents the execution status of a node during a run
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
)

// BackoffStrategy defines the strategy for calculating retry delays
type BackoffStrategy string

const (
	// BackoffConstant returns a constant delay for all retry attempts
	BackoffConstant BackoffStrategy = "constant"
	// BackoffLinear increases the delay linearly with each retry attempt
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential increases the delay exponentially with each retry attempt
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy defines how a node's transient failures are retried.
type RetryPolicy struct {
	MaxRetries      int             `json:"max_retries"`
	BackoffStrategy BackoffStrategy `json:"backoff_strategy"`
	InitialDelay    time.Duration   `json:"initial_delay"`
	MaxDelay        time.Duration   `json:"max_delay"`
	Multiplier      float64         `json:"multiplier"`
}

// CalculateDelay calculates the delay before a given retry attempt.
func (rp *RetryPolicy) CalculateDelay(attempt int) time.Duration {
	switch rp.BackoffStrategy {
	case BackoffConstant:
		return rp.InitialDelay
	case BackoffLinear:
		return rp.InitialDelay + rp.InitialDelay*time.Duration(attempt)
	case BackoffExponential:
		delay := time.Duration(float64(rp.InitialDelay) * math.Pow(rp.Multiplier, float64(attempt)))
		if rp.MaxDelay > 0 && delay > rp.MaxDelay {
			return rp.MaxDelay
		}
		return delay
	default:
		return rp.InitialDelay
	}
}

// DefaultRetryPolicy retries transient failures twice with exponential
// backoff.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:      2,
		BackoffStrategy: BackoffExponential,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
	}
}

// Node is one named step in the turn graph.
type Node struct {
	Name  string
	Run   NodeFunc
	Retry *RetryPolicy
}
