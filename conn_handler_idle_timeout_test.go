package mcgate

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestHandleConnIdleTimeoutReturnsNil(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg := newServeConfig([]ServeOption{WithIdleTimeout(50 * time.Millisecond), WithWriteTimeout(0)})

	done := make(chan error, 1)
	go func() {
		done <- handleConn(context.Background(), server, NewRouter(), cfg)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on idle timeout, got %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("expected connection handler to exit on idle timeout")
	}
}

func TestHandleConnContextCancelReturnsNil(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- handleConn(ctx, server, NewRouter(), testConfig())
	}()

	cancel()
	// serveConn closes the conn on cancel; do the same here.
	_ = server.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error after cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("handler did not stop after cancel")
	}
}
