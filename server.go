// Package mcgate serves the serverbound half of the 1.12.2 game protocol:
// it frames and decompresses inbound packets, decodes them in the state the
// connection is in, and hands them to handlers registered on a Router.
package mcgate

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"
)

// SetupFunc is an injection point for registering packet handlers.
// It is called once before serving starts.
type SetupFunc func(r *Router) error

var ErrNoSetup = errors.New("mcgate: setup is required")

// ListenAndServe starts a TCP listener and serves game connections on it.
// addr wins over WithAddr; both empty means ":25565".
func ListenAndServe(addr string, setup SetupFunc, opts ...ServeOption) error {
	listener, err := net.Listen("tcp", normalizeAddr(addr, opts))
	if err != nil {
		return err
	}
	return Serve(listener, setup, opts...)
}

// Serve handles accepted connections from an existing listener.
func Serve(listener net.Listener, setup SetupFunc, opts ...ServeOption) error {
	return ServeWithContext(context.Background(), listener, setup, opts...)
}

// ServeWithContext is Serve with cancellation. Cancelling ctx closes the
// listener and every open connection, and ServeWithContext returns nil.
func ServeWithContext(ctx context.Context, listener net.Listener, setup SetupFunc, opts ...ServeOption) error {
	if setup == nil {
		return ErrNoSetup
	}
	cfg := newServeConfig(opts)
	router := NewRouter()
	if err := setup(router); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			backoff = nextAcceptBackoff(backoff)
			klog.Warnf("mcgate: accept error: %v (retry in %s)", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0
		go serveConn(ctx, conn, router, cfg)
	}
}

func serveConn(ctx context.Context, conn net.Conn, router *Router, cfg serveConfig) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := handleConn(ctx, conn, router, cfg); err != nil {
		klog.CtxWarnf(ctx, "mcgate: conn %s closed: %v", conn.RemoteAddr(), err)
	}
}

func nextAcceptBackoff(cur time.Duration) time.Duration {
	const (
		minBackoff = 5 * time.Millisecond
		maxBackoff = time.Second
	)
	if cur <= 0 {
		return minBackoff
	}
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
