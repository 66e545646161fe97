// Package cache stores short-lived JSON snapshots of report results.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Gen identifies the cache generation a read observed. Invalidate starts a
// new generation.
type Gen int64

// Cache is a read-through store for derived results.
type Cache interface {
	// Get decodes the entry for key into dst and reports whether it hit. The
	// returned Gen must be passed to the Set that stores a value computed
	// after the miss.
	Get(ctx context.Context, key string, dst any) (Gen, bool, error)
	// Set stores value under key unless Invalidate has run since gen was read.
	Set(ctx context.Context, key string, gen Gen, value any) error
	// Invalidate makes every existing entry unreachable.
	Invalidate(ctx context.Context) error
}

// Noop never stores anything. It is used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (Gen, bool, error) { return 0, false, nil }
func (Noop) Set(context.Context, string, Gen, any) error         { return nil }
func (Noop) Invalidate(context.Context) error                    { return nil }

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local Cache with lazy expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	gen     Gen
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns a Memory cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (Gen, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	gen := m.gen
	m.mu.RUnlock()
	if !ok {
		return gen, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt == e.expiresAt {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return gen, false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return gen, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return gen, true, nil
}

func (m *Memory) Set(_ context.Context, key string, gen Gen, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	m.entries[key] = entry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.entries = make(map[string]entry)
	return nil
}

// StartCleanup periodically removes expired entries until ctx is cancelled.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				now := m.now()
				for k, e := range m.entries {
					if now.After(e.expiresAt) {
						delete(m.entries, k)
					}
				}
				m.mu.Unlock()
			}
		}
	}()
}

func (m *Memory) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
