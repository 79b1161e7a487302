package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process backend, a tag index layered over go-cache.
type MemoryStore struct {
	cache *gocache.Cache

	mu   sync.Mutex
	tags map[string]map[string]struct{}
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
		tags:  make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, nil
	}

	entry := value.(*Entry)
	if time.Now().After(entry.ExpiresAt) {
		s.cache.Delete(key)
		return nil, nil
	}
	return entry, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, data json.RawMessage, ttl time.Duration, tags ...string) error {
	now := time.Now()
	entry := &Entry{
		Data:      data,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
		Tags:      tags,
	}
	s.cache.Set(key, entry, ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		if s.tags[tag] == nil {
			s.tags[tag] = make(map[string]struct{})
		}
		s.tags[tag][key] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) InvalidateTag(_ context.Context, tag string) error {
	s.mu.Lock()
	keys := s.tags[tag]
	delete(s.tags, tag)
	s.mu.Unlock()

	for key := range keys {
		s.cache.Delete(key)
	}
	return nil
}
