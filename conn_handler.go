package mcgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/cloudwego/kitex/pkg/klog"

	"github.com/gogogo1024/mcgate/protocol"
)

var (
	// ErrTrailingBytes means a packet decoded without consuming its whole frame.
	ErrTrailingBytes = errors.New("mcgate: packet left unread bytes in its frame")

	ErrBufferQuota = errors.New("mcgate: connection buffer quota exceeded")
	ErrRateLimited = errors.New("mcgate: packet rate limit exceeded")
)

// HandleConn serves one connection until the peer disconnects, the idle
// timeout passes, or a packet fails to decode. The connection starts in the
// Handshake state.
func HandleConn(ctx context.Context, conn net.Conn, router *Router, opts ...ServeOption) error {
	return handleConn(ctx, conn, router, newServeConfig(opts))
}

func handleConn(ctx context.Context, conn net.Conn, router *Router, cfg serveConfig) error {
	if router == nil {
		return errors.New("mcgate: nil router")
	}

	state := &connHandlerState{
		cc:      newConnContext(cfg.limits, time.Now),
		buf:     make([]byte, 0, 8*1024),
		tmp:     make([]byte, 4*1024),
		session: newSession(conn, cfg),
	}
	defer func() { state.cc.Release(len(state.buf)) }()
	defer router.closed(state.session)

	for {
		readErr := readIntoBuffer(conn, state, cfg.idleTimeout)
		if err := processBufferedFrames(ctx, state, router, cfg); err != nil {
			return err
		}
		if readErr == nil {
			continue
		}
		switch {
		case errors.Is(readErr, io.EOF):
			return nil
		case errors.Is(readErr, os.ErrDeadlineExceeded):
			klog.CtxDebugf(ctx, "mcgate: conn %s idle for %s", conn.RemoteAddr(), cfg.idleTimeout)
			return nil
		case ctx.Err() != nil:
			return nil
		}
		return readErr
	}
}

type connHandlerState struct {
	cc      *ConnContext
	buf     []byte
	tmp     []byte
	session *Session
}

func readIntoBuffer(conn net.Conn, state *connHandlerState, idle time.Duration) error {
	var deadline time.Time
	if idle > 0 {
		deadline = time.Now().Add(idle)
	}
	_ = conn.SetReadDeadline(deadline)

	n, err := conn.Read(state.tmp)
	if n > 0 {
		if !state.cc.Reserve(n) {
			state.cc.Release(n)
			return ErrBufferQuota
		}
		state.buf = append(state.buf, state.tmp[:n]...)
	}
	return err
}

func processBufferedFrames(ctx context.Context, state *connHandlerState, router *Router, cfg serveConfig) error {
	consumed := 0

	for {
		frame, frameLen, err := protocol.DecodeFrame(state.buf[consumed:])
		if err != nil {
			return err
		}
		if frame == nil {
			break
		}

		if err := handleFrame(ctx, state, router, cfg, frame); err != nil {
			return err
		}
		consumed += frameLen
	}

	if consumed > 0 {
		state.cc.Release(consumed)
		copy(state.buf, state.buf[consumed:])
		state.buf = state.buf[:len(state.buf)-consumed]
	}
	return nil
}

func handleFrame(ctx context.Context, state *connHandlerState, router *Router, cfg serveConfig, frame []byte) error {
	if !state.cc.Allow() {
		return ErrRateLimited
	}

	s := state.session
	body, err := protocol.DecompressBody(frame, s.CompressionThreshold())
	if err != nil {
		return err
	}

	p, n, err := protocol.DecodeBytes(s.State(), body)
	if err != nil {
		return err
	}
	if n != len(body) {
		return fmt.Errorf("%w: %s used %d of %d bytes", ErrTrailingBytes, protocol.Name(p), n, len(body))
	}

	if cfg.stats != nil {
		if err := cfg.stats.Record(protocol.StateOf(p), protocol.Name(p)); err != nil {
			klog.CtxWarnf(ctx, "mcgate: record %s: %v", protocol.Name(p), err)
		}
	}
	return router.Dispatch(ctx, s, p)
}

// writeAll writes data under a deadline of timeout (none when zero) and clears
// the deadline before returning.
func writeAll(conn net.Conn, data []byte, timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	_ = conn.SetWriteDeadline(deadline)
	defer func() { _ = conn.SetWriteDeadline(time.Time{}) }()

	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
