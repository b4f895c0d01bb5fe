package mcgate

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gogogo1024/mcgate/protocol"
)

func TestHandleConnWriteTimeoutReturnsError(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	// Never read from client. The ping reply blocks and then times out.
	r := statusRouter()
	cfg := newServeConfig([]ServeOption{WithIdleTimeout(500 * time.Millisecond), WithWriteTimeout(50 * time.Millisecond)})

	done := make(chan error, 1)
	go func() {
		done <- handleConn(context.Background(), server, r, cfg)
	}()

	wire := packetFrames(t, protocol.CompressionDisabled, statusHandshake, &protocol.StatusPing{Payload: 7})
	if _, err := client.Write(wire); err != nil {
		t.Fatalf("client write request: %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected write timeout error, got nil")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("expected handler to exit due to write timeout")
	}
}
