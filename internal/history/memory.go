package history

import (
	"context"
	"sync"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// MemoryStore keeps session history in process memory, bounded per
// session. It serves deployments without Redis and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]types.ChatTurn
	maxTurns int
}

// NewMemoryStore creates an in-memory history store.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &MemoryStore{sessions: make(map[string][]types.ChatTurn), maxTurns: maxTurns}
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turns ...types.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.sessions[sessionID], turns...)
	if len(list) > s.maxTurns {
		list = list[len(list)-s.maxTurns:]
	}
	s.sessions[sessionID] = list
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, sessionID string, n int) ([]types.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sessions[sessionID]
	if n <= 0 || len(list) == 0 {
		return nil, nil
	}
	if len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]types.ChatTurn, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("")
}

func (s *MemoryStore) Close() error {
	return nil
}
