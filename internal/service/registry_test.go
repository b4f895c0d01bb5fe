package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/gogogo1024/mcgate"
	"github.com/gogogo1024/mcgate/protocol"
)

type testConn struct {
	t      *testing.T
	client net.Conn
	br     *bufio.Reader
	done   chan error
	// threshold tracks the compression the server has announced.
	threshold int
}

func dial(t *testing.T, r *mcgate.Router, opts ...mcgate.ServeOption) *testConn {
	t.Helper()
	server, client := net.Pipe()
	c := &testConn{t: t, client: client, br: bufio.NewReader(client), done: make(chan error, 1), threshold: protocol.CompressionDisabled}
	go func() {
		defer server.Close()
		c.done <- mcgate.HandleConn(context.Background(), server, r, opts...)
	}()
	t.Cleanup(func() { _ = client.Close() })
	_ = client.SetDeadline(time.Now().Add(3 * time.Second))
	return c
}

func (c *testConn) send(ps ...protocol.Packet) {
	c.t.Helper()
	var wire []byte
	for _, p := range ps {
		body, err := protocol.Encode(p)
		if err != nil {
			c.t.Fatalf("Encode: %v", err)
		}
		if body, err = protocol.CompressBody(body, c.threshold); err != nil {
			c.t.Fatalf("CompressBody: %v", err)
		}
		if wire, err = protocol.AppendFrame(wire, body); err != nil {
			c.t.Fatalf("AppendFrame: %v", err)
		}
	}
	if _, err := c.client.Write(wire); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testConn) recv() (int32, *protocol.Reader) {
	c.t.Helper()
	frame, err := protocol.ReadFrame(c.br)
	if err != nil {
		c.t.Fatalf("ReadFrame: %v", err)
	}
	body, err := protocol.DecompressBody(frame, c.threshold)
	if err != nil {
		c.t.Fatalf("DecompressBody: %v", err)
	}
	r := protocol.NewReader(bytes.NewReader(body))
	id, err := r.ReadVarInt()
	if err != nil {
		c.t.Fatalf("read id: %v", err)
	}
	return id, r
}

func (c *testConn) wait() error {
	c.t.Helper()
	select {
	case err := <-c.done:
		return err
	case <-time.After(3 * time.Second):
		c.t.Fatalf("timeout waiting for connection to end")
		return nil
	}
}

func handshake(next int32) *protocol.Handshake {
	return &protocol.Handshake{
		ProtocolVersion: protocol.ProtocolVersion,
		ServerAddress:   "mc.example.org",
		ServerPort:      25565,
		NextState:       next,
	}
}

func TestStatusFlow(t *testing.T) {
	r := mcgate.NewRouter()
	RegisterHandlers(r, Config{MOTD: "hello there", MaxPlayers: 5})
	c := dial(t, r)

	c.send(handshake(protocol.NextStateStatus), &protocol.StatusRequest{})
	id, rd := c.recv()
	if id != statusResponseID {
		t.Fatalf("status response id=0x%02X", id)
	}
	raw, err := rd.ReadString(maxStatusJSONChars)
	if err != nil {
		t.Fatalf("read status json: %v", err)
	}
	var st statusResponse
	if err := sonic.UnmarshalString(raw, &st); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	if st.Version.Protocol != protocol.ProtocolVersion || st.Version.Name != "1.12.2" {
		t.Fatalf("version=%+v", st.Version)
	}
	if st.Players.Max != 5 || st.Players.Online != 0 || st.Description.Text != "hello there" {
		t.Fatalf("status=%+v", st)
	}

	c.send(&protocol.StatusPing{Payload: -42})
	id, rd = c.recv()
	if v, err := rd.ReadInt64(); id != statusPongID || err != nil || v != -42 {
		t.Fatalf("pong id=0x%02X payload=%d err=%v", id, v, err)
	}

	_ = c.client.Close()
	if err := c.wait(); err != nil {
		t.Fatalf("connection error: %v", err)
	}
}

func TestBadNextStateCloses(t *testing.T) {
	r := mcgate.NewRouter()
	RegisterHandlers(r, Config{})
	c := dial(t, r)

	c.send(handshake(3))
	if err := c.wait(); !errors.Is(err, ErrBadNextState) {
		t.Fatalf("expected ErrBadNextState, got %v", err)
	}
}

func TestLoginFlowWithCompression(t *testing.T) {
	r := mcgate.NewRouter()
	svc := RegisterHandlers(r, Config{})
	c := dial(t, r, mcgate.WithCompressionThreshold(128))

	c.send(handshake(protocol.NextStateLogin), &protocol.LoginStart{Name: "Steve"})

	id, rd := c.recv()
	if id != setCompressionID {
		t.Fatalf("expected Set Compression first, got 0x%02X", id)
	}
	threshold, err := rd.ReadVarInt()
	if err != nil || threshold != 128 {
		t.Fatalf("threshold=(%d, %v)", threshold, err)
	}
	c.threshold = int(threshold)

	id, rd = c.recv()
	if id != loginSuccessID {
		t.Fatalf("expected Login Success, got 0x%02X", id)
	}
	uid, _ := rd.ReadString(36)
	name, _ := rd.ReadString(protocol.MaxUsernameLen)
	if name != "Steve" || uid != OfflineUUID("Steve").String() {
		t.Fatalf("login success uuid=%q name=%q", uid, name)
	}

	c.send(&protocol.KeepAlive{ID: 1}, &protocol.ChatMessage{Message: "hi"}, &protocol.KeepAlive{ID: 2})
	// The pipe hands data over only once the handler has read it; closing
	// afterwards lets the loop drain what it buffered.
	_ = c.client.Close()
	if err := c.wait(); err != nil {
		t.Fatalf("connection error: %v", err)
	}
	if svc.KeepAlives() != 2 || svc.ChatMessages() != 1 {
		t.Fatalf("keepalives=%d chats=%d", svc.KeepAlives(), svc.ChatMessages())
	}
	if online := svc.Online(); len(online) != 0 {
		t.Fatalf("players still online after disconnect: %v", online)
	}
}

func TestLoginWithoutCompression(t *testing.T) {
	r := mcgate.NewRouter()
	svc := RegisterHandlers(r, Config{})
	c := dial(t, r, mcgate.WithCompressionThreshold(protocol.CompressionDisabled))

	c.send(handshake(protocol.NextStateLogin), &protocol.LoginStart{Name: "Alex"})
	if id, _ := c.recv(); id != loginSuccessID {
		t.Fatalf("expected Login Success, got 0x%02X", id)
	}
	if online := svc.Online(); len(online) != 1 || online[0] != "Alex" {
		t.Fatalf("online=%v", online)
	}
}

func TestLoginRejectsOtherProtocolVersion(t *testing.T) {
	r := mcgate.NewRouter()
	RegisterHandlers(r, Config{})
	c := dial(t, r)

	hs := handshake(protocol.NextStateLogin)
	hs.ProtocolVersion = 335
	c.send(hs, &protocol.LoginStart{Name: "Old"})

	id, rd := c.recv()
	if id != loginDisconnectID {
		t.Fatalf("expected Login Disconnect, got 0x%02X", id)
	}
	reason, _ := rd.ReadString(maxChatJSONChars)
	var msg chatText
	if err := sonic.UnmarshalString(reason, &msg); err != nil || msg.Text == "" {
		t.Fatalf("disconnect reason %q: %v", reason, err)
	}
	if err := c.wait(); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestLoginRejectsWhenFull(t *testing.T) {
	r := mcgate.NewRouter()
	RegisterHandlers(r, Config{MaxPlayers: 1})

	first := dial(t, r, mcgate.WithCompressionThreshold(protocol.CompressionDisabled))
	first.send(handshake(protocol.NextStateLogin), &protocol.LoginStart{Name: "One"})
	if id, _ := first.recv(); id != loginSuccessID {
		t.Fatalf("first login got 0x%02X", id)
	}

	second := dial(t, r, mcgate.WithCompressionThreshold(protocol.CompressionDisabled))
	second.send(handshake(protocol.NextStateLogin), &protocol.LoginStart{Name: "Two"})
	if id, _ := second.recv(); id != loginDisconnectID {
		t.Fatalf("second login got 0x%02X", id)
	}
	if err := second.wait(); !errors.Is(err, ErrServerFull) {
		t.Fatalf("expected ErrServerFull, got %v", err)
	}
}

func TestEncryptionResponseRejected(t *testing.T) {
	r := mcgate.NewRouter()
	RegisterHandlers(r, Config{})
	c := dial(t, r)

	c.send(handshake(protocol.NextStateLogin), &protocol.EncryptionResponse{SharedSecret: []byte{1}, VerifyToken: []byte{2}})
	if err := c.wait(); !errors.Is(err, ErrOnlineModeDisabled) {
		t.Fatalf("expected ErrOnlineModeDisabled, got %v", err)
	}
}

func TestOfflineUUID(t *testing.T) {
	a := OfflineUUID("Steve")
	if a != OfflineUUID("Steve") {
		t.Fatalf("OfflineUUID is not deterministic")
	}
	if a == OfflineUUID("steve") {
		t.Fatalf("names differing in case share a UUID")
	}
	if a.Version() != 3 || a.Variant() != uuid.RFC4122 {
		t.Fatalf("uuid %s: version %d variant %s", a, a.Version(), a.Variant())
	}
}
