package source

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory serves sources from a map keyed by locator. It is used by tests and
// by embedders that ship their scripts inside the binary.
type Memory struct {
	mu      sync.RWMutex
	sources map[string]string
	delays  map[string]time.Duration
	fetches []string
}

// NewMemory creates a memory fetcher seeded with sources.
func NewMemory(sources map[string]string) *Memory {
	m := &Memory{
		sources: make(map[string]string, len(sources)),
		delays:  make(map[string]time.Duration),
	}
	for k, v := range sources {
		m.sources[k] = v
	}
	return m
}

// Put adds or replaces the source behind locator.
func (m *Memory) Put(locator, src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[locator] = src
}

// Delay makes fetches of locator take at least d.
func (m *Memory) Delay(locator string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[locator] = d
}

// Fetches returns the locators requested so far, in request order.
func (m *Memory) Fetches() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.fetches))
	copy(out, m.fetches)
	return out
}

// Fetch implements Fetcher.
func (m *Memory) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, req.Locator)
	src, ok := m.sources[req.Locator]
	delay := m.delays[req.Locator]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Locator)
	}
	return []byte(src), nil
}
