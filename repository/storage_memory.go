package repository

import (
	"context"
	"sync"
	"time"

	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStorageRepository keeps client storage in process, one entry per session.
// Sessions idle longer than the TTL are evicted with their storage.
type MemoryStorageRepository struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *sessionEntries]
	logger logger.Logger
}

type sessionEntries struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorageRepository(size int, ttl time.Duration, log logger.Logger) *MemoryStorageRepository {
	return &MemoryStorageRepository{
		cache:  expirable.NewLRU[string, *sessionEntries](size, nil, ttl),
		logger: log,
	}
}

func (r *MemoryStorageRepository) Get(_ context.Context, sessionID string, scope models.StorageScope, key string) (string, bool, error) {
	entries, ok := r.cache.Get(sessionID)
	if !ok {
		return "", false, nil
	}

	entries.mu.RLock()
	defer entries.mu.RUnlock()
	value, ok := entries.values[storageKey(scope, key)]
	return value, ok, nil
}

func (r *MemoryStorageRepository) Set(_ context.Context, sessionID string, scope models.StorageScope, key, value string) error {
	r.mu.Lock()
	entries, ok := r.cache.Get(sessionID)
	if !ok {
		entries = &sessionEntries{values: make(map[string]string)}
	}
	// Re-adding refreshes the TTL
	r.cache.Add(sessionID, entries)
	r.mu.Unlock()

	entries.mu.Lock()
	entries.values[storageKey(scope, key)] = value
	entries.mu.Unlock()
	return nil
}

func (r *MemoryStorageRepository) Remove(_ context.Context, sessionID string, scope models.StorageScope, key string) error {
	entries, ok := r.cache.Get(sessionID)
	if !ok {
		return nil
	}

	entries.mu.Lock()
	delete(entries.values, storageKey(scope, key))
	entries.mu.Unlock()
	return nil
}

func (r *MemoryStorageRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	r.cache.Remove(sessionID)
	r.mu.Unlock()
	return nil
}

// storageKey is the sort key of one entry: scope#key
func storageKey(scope models.StorageScope, key string) string {
	return string(scope) + "#" + key
}
