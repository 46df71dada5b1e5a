// Package tempstore keeps claim tickets between preview and sign-up.
package tempstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

type memEntry struct {
	ticket   *domain.TempAnalysis
	deadline time.Time
}

// Memory is a single-process TempStore bounded by size. Entries also carry
// their own deadline so restored tickets keep their remaining TTL.
type Memory struct {
	mu  sync.Mutex
	lru *expirable.LRU[domain.TempID, memEntry]
	now func() time.Time
}

var _ domain.TempStore = (*Memory)(nil)

// NewMemory creates a store holding at most size tickets. maxTTL bounds how
// long any entry can stay in the cache.
func NewMemory(size int, maxTTL time.Duration) *Memory {
	return &Memory{
		lru: expirable.NewLRU[domain.TempID, memEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

func (m *Memory) Put(_ context.Context, t *domain.TempAnalysis, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(t.ID, memEntry{ticket: t, deadline: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Get(_ context.Context, id domain.TempID) (*domain.TempAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(id)
}

func (m *Memory) Take(_ context.Context, id domain.TempID) (*domain.TempAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.lru.Remove(id)
	return t, nil
}

func (m *Memory) Delete(_ context.Context, id domain.TempID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(id)
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) lookup(id domain.TempID) (*domain.TempAnalysis, error) {
	e, ok := m.lru.Get(id)
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if !m.now().Before(e.deadline) {
		m.lru.Remove(id)
		return nil, domain.ErrTicketNotFound
	}
	return e.ticket, nil
}
