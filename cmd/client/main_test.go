package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gogogo1024/mcgate"
	"github.com/gogogo1024/mcgate/internal/service"
	"github.com/gogogo1024/mcgate/protocol"
)

func startServer(t *testing.T, opts ...mcgate.ServeOption) (string, *service.Service) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	svcCh := make(chan *service.Service, 1)
	done := make(chan error, 1)
	go func() {
		done <- mcgate.ServeWithContext(ctx, listener, func(r *mcgate.Router) error {
			svcCh <- service.RegisterHandlers(r, service.Config{MOTD: "test server"})
			return nil
		}, opts...)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case svc := <-svcCh:
		return listener.Addr().String(), svc
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
		return "", nil
	}
}

func TestSendRejectsStateMismatch(t *testing.T) {
	server, clientConn := net.Pipe()
	defer server.Close()
	defer clientConn.Close()

	c := newClient(clientConn, time.Second)
	err := c.send(&protocol.LoginStart{Name: "Steve"})
	if !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch, got %v", err)
	}

	c.state = protocol.StatePlay
	if err := c.send(&protocol.StatusPing{}); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch for a Status packet in Play, got %v", err)
	}
}

func TestRunStatus(t *testing.T) {
	addr, _ := startServer(t)

	var out bytes.Buffer
	if err := run([]string{"-addr", addr, "-mode", "status"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "test server") || !strings.Contains(got, "ping:") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestRunLogin(t *testing.T) {
	addr, svc := startServer(t, mcgate.WithCompressionThreshold(64))

	var out bytes.Buffer
	if err := run([]string{"-addr", addr, "-mode", "login", "-name", "Alex", "-chat", "hello"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "compression threshold: 64") {
		t.Fatalf("missing compression line:\n%s", got)
	}
	if !strings.Contains(got, "logged in as Alex ("+service.OfflineUUID("Alex").String()+")") {
		t.Fatalf("missing login line:\n%s", got)
	}

	// The client hangs up right after sending; give the server a moment to
	// drain the connection.
	deadline := time.Now().Add(2 * time.Second)
	for svc.ChatMessages() != 1 || svc.KeepAlives() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("server saw keepalives=%d chats=%d", svc.KeepAlives(), svc.ChatMessages())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestParseFlagsRejectsUnknownMode(t *testing.T) {
	if _, err := parseFlags([]string{"-mode", "query"}); err == nil {
		t.Fatalf("expected error for an unknown mode")
	}
}

func TestSplitHostPort(t *testing.T) {
	if h, p := splitHostPort("mc.example.org:25570"); h != "mc.example.org" || p != 25570 {
		t.Fatalf("got %s %d", h, p)
	}
	if h, p := splitHostPort("localhost"); h != "localhost" || p != 25565 {
		t.Fatalf("got %s %d", h, p)
	}
}
