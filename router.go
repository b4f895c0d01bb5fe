package mcgate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogogo1024/mcgate/protocol"
)

// Handler handles a decoded serverbound packet. Returning an error closes the
// connection.
type Handler func(ctx context.Context, s *Session, p protocol.Packet) error

// Router maps packet kinds to handlers.
// It is safe for concurrent use.
type Router struct {
	mu       sync.RWMutex
	handlers map[protocol.Kind]Handler

	unhandled []atomic.Uint64

	closeHooks []func(*Session)
}

func NewRouter() *Router {
	return &Router{
		handlers:  make(map[protocol.Kind]Handler),
		unhandled: make([]atomic.Uint64, len(protocol.AllKinds())),
	}
}

func (r *Router) Register(k protocol.Kind, h Handler) {
	if !k.Valid() {
		panic(fmt.Sprintf("mcgate: register handler for unknown kind %s", k))
	}
	r.mu.Lock()
	r.handlers[k] = h
	r.mu.Unlock()
}

// OnClose adds fn to the hooks run once per connection after its read loop
// ends, whatever the reason.
func (r *Router) OnClose(fn func(*Session)) {
	r.mu.Lock()
	r.closeHooks = append(r.closeHooks, fn)
	r.mu.Unlock()
}

func (r *Router) closed(s *Session) {
	r.mu.RLock()
	hooks := r.closeHooks
	r.mu.RUnlock()
	for _, fn := range hooks {
		fn(s)
	}
}

// Dispatch runs the handler registered for p. Packets without a handler are
// counted and dropped.
func (r *Router) Dispatch(ctx context.Context, s *Session, p protocol.Packet) error {
	k := p.Kind()
	r.mu.RLock()
	h := r.handlers[k]
	r.mu.RUnlock()
	if h == nil {
		if k.Valid() {
			r.unhandled[k].Add(1)
		}
		return nil
	}
	return h(ctx, s, p)
}

// Unhandled returns, per packet name, how many packets arrived with no handler.
func (r *Router) Unhandled() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range r.unhandled {
		if n := r.unhandled[i].Load(); n > 0 {
			out[protocol.Kind(i).Name()] = n
		}
	}
	return out
}
