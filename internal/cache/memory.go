package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// MemoryBackend keeps entries in process memory. It serves deployments
// without Redis and fast tests; TTLs are enforced lazily on read.
type MemoryBackend struct {
	mu     sync.RWMutex
	scopes map[string]map[string]memoryEntry
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{scopes: make(map[string]map[string]memoryEntry)}
}

func (b *MemoryBackend) Put(ctx context.Context, scope string, entry Entry, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scopes[scope] == nil {
		b.scopes[scope] = make(map[string]memoryEntry)
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	b.scopes[scope][entry.Key] = memoryEntry{entry: entry, expiresAt: expires}
	return nil
}

func (b *MemoryBackend) Entries(ctx context.Context, scope string) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	var entries []Entry
	for key, me := range b.scopes[scope] {
		if !me.expiresAt.IsZero() && now.After(me.expiresAt) {
			delete(b.scopes[scope], key)
			continue
		}
		entries = append(entries, me.entry)
	}
	return entries, nil
}

func (b *MemoryBackend) Touch(ctx context.Context, scope, key string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if me, ok := b.scopes[scope][key]; ok {
		me.entry.LastAccess = at
		b.scopes[scope][key] = me
	}
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, scope string, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		delete(b.scopes[scope], key)
	}
	return nil
}

func (b *MemoryBackend) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("")
}

func (b *MemoryBackend) Close() error {
	return nil
}
