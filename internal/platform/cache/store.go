package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

type inflight struct {
	wg    sync.WaitGroup
	value any
	err   error
}

// Store is a TTL cache with request coalescing: concurrent loads for the
// same key share one loader call. A zero TTL disables expiry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	loadMu sync.Mutex
	loads  map[string]*inflight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		loads:   make(map[string]*inflight),
		ttl:     ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

func (s *Store) Invalidate(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// InvalidateAll empties the store. Called after every pipeline run so reads
// never serve a snapshot older than the newest persisted one.
func (s *Store) InvalidateAll(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// GetOrLoad returns the cached value for key, running loader at most once
// across concurrent callers when the key is cold.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	s.loadMu.Lock()
	if call, ok := s.loads[key]; ok {
		s.loadMu.Unlock()
		call.wg.Wait()
		return call.value, call.err
	}
	call := &inflight{}
	call.wg.Add(1)
	s.loads[key] = call
	s.loadMu.Unlock()

	if cached, ok := s.Get(ctx, key); ok {
		call.value = cached
	} else {
		call.value, call.err = loader(ctx)
		if call.err == nil {
			s.Set(ctx, key, call.value)
		}
	}
	call.wg.Done()

	s.loadMu.Lock()
	delete(s.loads, key)
	s.loadMu.Unlock()

	return call.value, call.err
}
