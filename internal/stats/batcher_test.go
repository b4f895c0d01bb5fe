package stats

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogogo1024/mcgate/protocol"
)

// blockingStore stalls every RecordBatch until release is closed.
type blockingStore struct {
	*InMemoryStore
	release chan struct{}
	calls   chan map[string]int64
}

func (s *blockingStore) RecordBatch(counts map[string]int64) error {
	s.calls <- counts
	<-s.release
	return s.InMemoryStore.RecordBatch(counts)
}

type failingStore struct {
	*InMemoryStore
	mu   sync.Mutex
	fail bool
}

func (s *failingStore) RecordBatch(counts map[string]int64) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("backend down")
	}
	return s.InMemoryStore.RecordBatch(counts)
}

func TestBatcher_RecordDoesNotWaitOnBackend(t *testing.T) {
	inner := &blockingStore{
		InMemoryStore: NewInMemoryStore(),
		release:       make(chan struct{}),
		calls:         make(chan map[string]int64, 1),
	}
	b := NewBatcher(inner, 0)

	_ = b.Record(protocol.StatePlay, "KeepAlive")
	flushed := make(chan error, 1)
	go func() { flushed <- b.Flush() }()

	select {
	case <-inner.calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("flush never reached the backend")
	}

	// The backend is stalled mid-flush; recording must still return at once.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = b.Record(protocol.StatePlay, "KeepAlive")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a stalled backend")
	}

	close(inner.release)
	if err := <-flushed; err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if p := b.Pending(); p != 100 {
		t.Fatalf("pending=%d, want 100", p)
	}
	inner.calls = make(chan map[string]int64, 1)
	snap, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap["Play/KeepAlive"] != 101 {
		t.Fatalf("snapshot=%v", snap)
	}
}

func TestBatcher_FlushLoop(t *testing.T) {
	inner := NewInMemoryStore()
	b := NewBatcher(inner, 10*time.Millisecond)
	defer func() { _ = b.Close() }()

	for i := 0; i < 3; i++ {
		_ = b.Record(protocol.StateStatus, "StatusPing")
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, _ := inner.Snapshot()
		if snap["Status/StatusPing"] == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("counts never flushed: %v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBatcher_FailedFlushKeepsCounts(t *testing.T) {
	inner := &failingStore{InMemoryStore: NewInMemoryStore(), fail: true}
	b := NewBatcher(inner, 0)

	_ = b.Record(protocol.StatePlay, "ChatMessage")
	_ = b.Record(protocol.StatePlay, "ChatMessage")
	if err := b.Flush(); err == nil {
		t.Fatalf("expected flush error")
	}
	if _, err := b.Snapshot(); err == nil {
		t.Fatalf("expected snapshot error while the backend is down")
	}
	if p := b.Pending(); p != 2 {
		t.Fatalf("pending=%d after failed flush", p)
	}

	inner.mu.Lock()
	inner.fail = false
	inner.mu.Unlock()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if snap, _ := inner.Snapshot(); snap["Play/ChatMessage"] != 2 {
		t.Fatalf("snapshot=%v", snap)
	}
}

func TestBatcher_ResetAndInvalidKey(t *testing.T) {
	inner := NewInMemoryStore()
	b := NewBatcher(inner, 0)

	if err := b.Record(protocol.StatePlay, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	_ = b.Record(protocol.StatePlay, "KeepAlive")
	_ = inner.Record(protocol.StatePlay, "Player")
	if err := b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap, _ := b.Snapshot()
	if len(snap) != 0 || b.Pending() != 0 {
		t.Fatalf("snapshot=%v pending=%d after reset", snap, b.Pending())
	}
	if b.Inner() != Store(inner) {
		t.Fatalf("Inner returned a different store")
	}
}

func TestInMemoryStore_RecordBatchRejectsBadKey(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.RecordBatch(map[string]int64{"Play/KeepAlive": 2, "nonsense": 1}); err == nil {
		t.Fatalf("expected error for a malformed key")
	}
	if snap, _ := s.Snapshot(); len(snap) != 0 {
		t.Fatalf("partial batch applied: %v", snap)
	}
}
