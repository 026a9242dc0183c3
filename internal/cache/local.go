package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Local is an in-process cache. Expired entries are dropped lazily on read
// and by Sweep.
type Local struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewLocal returns an empty process-local cache
func NewLocal() *Local {
	return &Local{items: make(map[string]entry), now: time.Now}
}

func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.RLock()
	e, ok := l.items[key]
	l.mu.RUnlock()
	if !ok || !l.now().Before(e.expires) {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.mu.Lock()
	l.items[key] = entry{value: append([]byte(nil), value...), expires: l.now().Add(ttl)}
	l.mu.Unlock()
	return nil
}

func (l *Local) Delete(_ context.Context, keys ...string) error {
	l.mu.Lock()
	for _, k := range keys {
		delete(l.items, k)
	}
	l.mu.Unlock()
	return nil
}

func (l *Local) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if e, ok := l.items[key]; ok && now.Before(e.expires) {
		return false, nil
	}
	l.items[key] = entry{value: append([]byte(nil), value...), expires: now.Add(ttl)}
	return true, nil
}

// Sweep removes expired entries and returns how many were dropped
func (l *Local) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, e := range l.items {
		if !now.Before(e.expires) {
			delete(l.items, k)
			n++
		}
	}
	return n
}
