package infra

import (
	"context"
	"sync"

	"starter-api/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// StatsSnapshot é uma cópia consistente dos contadores.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	BySource map[string]Counters `json:"by_source"`
	ByRoute  map[string]Counters `json:"by_route"`
	ByKey    map[string]Counters `json:"by_key,omitempty"`
}

// MemoryStatsStore guarda contadores em memória, sem expiração.
// Útil para testes e desenvolvimento.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	bySource map[string]Counters
	byRoute  map[string]Counters
	byKey    map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		bySource: make(map[string]Counters),
		byRoute:  make(map[string]Counters),
		byKey:    make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)
	bump(s.bySource, ev.Source, ev.Allowed)
	bump(s.byRoute, route, ev.Allowed)
	if s.trackKeys {
		bump(s.byKey, string(ev.Key), ev.Allowed)
	}
	return nil
}

func bump(m map[string]Counters, k string, allowed bool) {
	c := m[k]
	c.add(allowed)
	m[k] = c
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatsSnapshot{
		Total:    s.total,
		BySource: copyCounters(s.bySource),
		ByRoute:  copyCounters(s.byRoute),
	}
	if s.trackKeys {
		out.ByKey = copyCounters(s.byKey)
	}
	return out
}

func copyCounters(in map[string]Counters) map[string]Counters {
	out := make(map[string]Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ReadStats é o Snapshot com a assinatura compartilhada com o RedisStatsStore.
func (s *MemoryStatsStore) ReadStats(context.Context) (StatsSnapshot, error) {
	return s.Snapshot(), nil
}
