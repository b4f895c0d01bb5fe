package stats

import (
	"sync"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"

	"github.com/gogogo1024/mcgate/protocol"
)

// BatchStore is a Store that can apply many increments in one round trip.
type BatchStore interface {
	Store
	RecordBatch(counts map[string]int64) error
}

// Batcher counts in memory and flushes to a BatchStore every interval, so
// Record never waits on the backend. Counts that fail to flush are kept for
// the next attempt.
type Batcher struct {
	inner    BatchStore
	interval time.Duration

	mu      sync.Mutex
	pending map[string]int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Store = (*Batcher)(nil)

// NewBatcher starts the flush loop. A non-positive interval disables it;
// counts are then flushed only by Flush, Snapshot and Close.
func NewBatcher(inner BatchStore, interval time.Duration) *Batcher {
	b := &Batcher{
		inner:    inner,
		interval: interval,
		pending:  make(map[string]int64),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if interval > 0 {
		go b.loop()
	} else {
		close(b.done)
	}
	return b
}

func (b *Batcher) loop() {
	defer close(b.done)
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := b.Flush(); err != nil {
				klog.Warnf("stats: flush packet counters: %v", err)
			}
		case <-b.stop:
			return
		}
	}
}

func (b *Batcher) Record(state protocol.State, name string) error {
	key, err := Key(state, name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.pending[key]++
	b.mu.Unlock()
	return nil
}

// Flush sends the pending counts to the inner store.
func (b *Batcher) Flush() error {
	b.mu.Lock()
	batch := b.pending
	b.pending = make(map[string]int64, len(batch))
	b.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	if err := b.inner.RecordBatch(batch); err != nil {
		b.mu.Lock()
		for k, n := range batch {
			b.pending[k] += n
		}
		b.mu.Unlock()
		return err
	}
	return nil
}

// Pending returns the number of counts not yet flushed.
func (b *Batcher) Pending() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for _, v := range b.pending {
		n += v
	}
	return n
}

func (b *Batcher) Snapshot() (map[string]int64, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}
	return b.inner.Snapshot()
}

func (b *Batcher) Reset() error {
	b.mu.Lock()
	b.pending = make(map[string]int64)
	b.mu.Unlock()
	return b.inner.Reset()
}

// Close stops the flush loop and flushes what is left.
func (b *Batcher) Close() error {
	b.closeOnce.Do(func() { close(b.stop) })
	<-b.done
	return b.Flush()
}

func (b *Batcher) Inner() Store { return b.inner }
