package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"tickstats/internal/domain"
)

var ErrNotFound = errors.New("not found")

// MemoryCache keeps the last tick per instrument in process memory. It
// is the fallback when Redis is unreachable and the whole cache in
// single-node deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	last    map[string]entry
	ttl     time.Duration
	cleaner *time.Ticker
	done    chan struct{}
}

type entry struct {
	tick     domain.Tick
	storedAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	m := &MemoryCache{
		last: make(map[string]entry),
		ttl:  ttl,
		done: make(chan struct{}),
	}
	m.cleaner = time.NewTicker(10 * time.Second)
	go m.backgroundCleaner()
	return m
}

func (m *MemoryCache) backgroundCleaner() {
	for {
		select {
		case <-m.cleaner.C:
			cut := time.Now().Add(-m.ttl)
			m.mu.Lock()
			for id, e := range m.last {
				if e.storedAt.Before(cut) {
					delete(m.last, id)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			m.cleaner.Stop()
			return
		}
	}
}

func (m *MemoryCache) PushTick(ctx context.Context, t domain.Tick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[t.Instrument] = entry{tick: t, storedAt: time.Now()}
	return nil
}

func (m *MemoryCache) GetLatest(ctx context.Context, instrument string) (domain.Tick, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.last[instrument]
	if !ok {
		return domain.Tick{}, ErrNotFound
	}
	return e.tick, nil
}

func (m *MemoryCache) Health(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) Close() error {
	close(m.done)
	return nil
}
