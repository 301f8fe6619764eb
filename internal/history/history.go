// Package history keeps per-session conversation history: a bounded list
// of chat turns in Redis, with an in-process fallback for deployments
// without Redis.
package history

import (
	"context"
	"strings"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// defaultMaxTurns bounds a session's stored history.
const defaultMaxTurns = 1000

// Store persists chat turns per session.
type Store interface {
	Append(ctx context.Context, sessionID string, turns ...types.ChatTurn) error
	Recent(ctx context.Context, sessionID string, n int) ([]types.ChatTurn, error)
	Clear(ctx context.Context, sessionID string) error
	Health(ctx context.Context) types.HealthStatus
	Close() error
}

// Manager wraps a store with the configured window size. History
// failures never fail a turn: appends are logged and dropped, reads
// degrade to an empty window.
type Manager struct {
	store  Store
	cfg    config.HistoryConfig
	logger *observability.TracedLogger
}

// NewManager builds a history manager over the given store.
func NewManager(store Store, cfg config.HistoryConfig, logger *observability.TracedLogger) *Manager {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	return &Manager{store: store, cfg: cfg, logger: logger}
}

// Record appends a question/answer exchange to the session history.
func (m *Manager) Record(ctx context.Context, sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	now := time.Now()
	err := m.store.Append(ctx, sessionID,
		types.ChatTurn{Role: "user", Content: question, At: now},
		types.ChatTurn{Role: "assistant", Content: answer, At: now},
	)
	if err != nil && m.logger != nil {
		m.logger.Warn(ctx, "failed to record history",
			"error", types.WrapError(types.HISTORY_UNAVAILABLE, "history append failed", err))
	}
}

// Window returns the most recent turns for prompting, up to the
// configured window size.
func (m *Manager) Window(ctx context.Context, sessionID string) []types.ChatTurn {
	if sessionID == "" {
		return nil
	}
	turns, err := m.store.Recent(ctx, sessionID, m.cfg.Window)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn(ctx, "failed to load history window",
				"error", types.WrapError(types.HISTORY_UNAVAILABLE, "history read failed", err))
		}
		return nil
	}
	return turns
}

// Clear drops a session's history.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	return m.store.Clear(ctx, sessionID)
}

// Health reports the store's health.
func (m *Manager) Health(ctx context.Context) types.HealthStatus {
	return m.store.Health(ctx)
}

// Close releases the store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// FormatWindow renders turns for inclusion in a prompt, one line per
// turn with Chinese role labels.
func FormatWindow(turns []types.ChatTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := "用户"
		if turn.Role == "assistant" {
			label = "助手"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}
