package mcgate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogogo1024/mcgate/protocol"
)

// ConnLimits bounds what one connection may consume.
type ConnLimits struct {
	// MaxBuffer caps bytes read from the socket but not yet decoded.
	MaxBuffer int
	// PacketRate is the sustained number of packets per second.
	PacketRate int
	// PacketBurst is the token bucket size. A new connection starts half full.
	PacketBurst int
}

// DefaultConnLimits fits one maximum-size frame plus a read chunk, and well
// above the ~20 movement packets per second a vanilla client sends.
var DefaultConnLimits = ConnLimits{
	MaxBuffer:   protocol.MaxFrameLen + 64*1024,
	PacketRate:  100,
	PacketBurst: 200,
}

// ConnContext tracks a connection's buffer quota and packet token bucket.
type ConnContext struct {
	limits     ConnLimits
	bufferUsed atomic.Int64

	mu         sync.Mutex
	now        func() time.Time
	tokens     int64
	lastRefill time.Time
}

func NewConnContext() *ConnContext {
	return newConnContext(DefaultConnLimits, time.Now)
}

func newConnContext(limits ConnLimits, now func() time.Time) *ConnContext {
	if limits.MaxBuffer <= 0 {
		limits.MaxBuffer = DefaultConnLimits.MaxBuffer
	}
	if limits.PacketRate <= 0 {
		limits.PacketRate = DefaultConnLimits.PacketRate
	}
	if limits.PacketBurst <= 0 {
		limits.PacketBurst = DefaultConnLimits.PacketBurst
	}
	return &ConnContext{
		limits:     limits,
		now:        now,
		tokens:     int64(limits.PacketBurst / 2),
		lastRefill: now(),
	}
}

// Reserve accounts n more buffered bytes and reports whether the total is
// still within quota. A failed Reserve still counts n; call Release to undo.
func (c *ConnContext) Reserve(n int) bool {
	used := c.bufferUsed.Add(int64(n))
	return used <= int64(c.limits.MaxBuffer)
}

func (c *ConnContext) Release(n int) {
	c.bufferUsed.Add(-int64(n))
}

// Buffered returns the bytes currently reserved.
func (c *ConnContext) Buffered() int {
	return int(c.bufferUsed.Load())
}

// Allow takes one token from the packet bucket.
func (c *ConnContext) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	rate := int64(c.limits.PacketRate)
	add := int64(now.Sub(c.lastRefill)) * rate / int64(time.Second)
	if add > 0 {
		c.tokens += add
		if burst := int64(c.limits.PacketBurst); c.tokens >= burst {
			c.tokens = burst
			c.lastRefill = now
		} else {
			c.lastRefill = c.lastRefill.Add(time.Duration(add * int64(time.Second) / rate))
		}
	}

	if c.tokens <= 0 {
		return false
	}
	c.tokens--
	return true
}
