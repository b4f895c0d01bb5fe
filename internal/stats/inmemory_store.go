package stats

import (
	"sync"

	"github.com/gogogo1024/mcgate/protocol"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	counts map[string]int64
}

var _ BatchStore = (*InMemoryStore)(nil)

type InMemoryStats struct {
	Keys  int   `json:"keys"`
	Total int64 `json:"total"`
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counts: make(map[string]int64)}
}

func (s *InMemoryStore) Record(state protocol.State, name string) error {
	key, err := Key(state, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.counts[key]++
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) RecordBatch(counts map[string]int64) error {
	for key := range counts {
		if _, _, err := SplitKey(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	for key, n := range counts {
		s.counts[key] += n
	}
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Snapshot() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out, nil
}

func (s *InMemoryStore) Reset() error {
	s.mu.Lock()
	s.counts = make(map[string]int64)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Stats() InMemoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := InMemoryStats{Keys: len(s.counts)}
	for _, v := range s.counts {
		st.Total += v
	}
	return st
}
