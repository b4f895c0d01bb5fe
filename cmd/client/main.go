package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/gogogo1024/mcgate/protocol"
)

// ErrStateMismatch means a packet was sent in a state that does not own it.
var ErrStateMismatch = errors.New("client: packet does not belong to the current state")

var errDisconnected = errors.New("client: disconnected by server")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type clientConfig struct {
	addr    string
	mode    string
	name    string
	chat    string
	timeout time.Duration
}

func parseFlags(args []string) (clientConfig, error) {
	fs := flag.NewFlagSet("mcgate-client", flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:25565", "server address")
	mode := fs.String("mode", "status", "status or login")
	name := fs.String("name", "Player", "username for login")
	chat := fs.String("chat", "", "chat message to send after login")
	timeout := fs.Duration("timeout", 3*time.Second, "dial and read timeout")
	if err := fs.Parse(args); err != nil {
		return clientConfig{}, err
	}
	if *mode != "status" && *mode != "login" {
		return clientConfig{}, fmt.Errorf("unknown mode %q", *mode)
	}
	return clientConfig{addr: *addr, mode: *mode, name: *name, chat: *chat, timeout: *timeout}, nil
}

func run(args []string, out io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", cfg.addr, cfg.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	c := newClient(conn, cfg.timeout)
	host, port := splitHostPort(cfg.addr)
	if cfg.mode == "status" {
		return c.status(out, host, port)
	}
	return c.login(out, host, port, cfg.name, cfg.chat)
}

func splitHostPort(addr string) (string, uint16) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 25565
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return host, 25565
	}
	return host, uint16(port)
}

// client speaks the serverbound side of the protocol and tracks the
// connection state the server is expected to be in.
type client struct {
	conn      net.Conn
	br        *bufio.Reader
	timeout   time.Duration
	state     protocol.State
	threshold int
}

func newClient(conn net.Conn, timeout time.Duration) *client {
	return &client{
		conn:      conn,
		br:        bufio.NewReader(conn),
		timeout:   timeout,
		state:     protocol.StateHandshake,
		threshold: protocol.CompressionDisabled,
	}
}

func (c *client) send(p protocol.Packet) error {
	if protocol.StateOf(p) != c.state {
		return fmt.Errorf("%w: %s is a %s packet, connection is in %s", ErrStateMismatch, protocol.Name(p), protocol.StateOf(p), c.state)
	}
	body, err := protocol.Encode(p)
	if err != nil {
		return err
	}
	if body, err = protocol.CompressBody(body, c.threshold); err != nil {
		return err
	}
	frame, err := protocol.AppendFrame(nil, body)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	_, err = c.conn.Write(frame)
	return err
}

// recv reads one clientbound packet as its id and a reader over the rest.
func (c *client) recv() (int32, *protocol.Reader, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	frame, err := protocol.ReadFrame(c.br)
	if err != nil {
		return 0, nil, err
	}
	body, err := protocol.DecompressBody(frame, c.threshold)
	if err != nil {
		return 0, nil, err
	}
	r := protocol.NewReader(bytes.NewReader(body))
	id, err := r.ReadVarInt()
	if err != nil {
		return 0, nil, err
	}
	return id, r, nil
}

func (c *client) handshake(host string, port uint16, next int32) error {
	err := c.send(&protocol.Handshake{
		ProtocolVersion: protocol.ProtocolVersion,
		ServerAddress:   host,
		ServerPort:      port,
		NextState:       next,
	})
	if err != nil {
		return err
	}
	if next == protocol.NextStateStatus {
		c.state = protocol.StateStatus
	} else {
		c.state = protocol.StateLogin
	}
	return nil
}

func (c *client) status(out io.Writer, host string, port uint16) error {
	if err := c.handshake(host, port, protocol.NextStateStatus); err != nil {
		return err
	}
	if err := c.send(&protocol.StatusRequest{}); err != nil {
		return err
	}
	id, r, err := c.recv()
	if err != nil {
		return err
	}
	if id != 0x00 {
		return fmt.Errorf("client: expected status response, got 0x%02X", id)
	}
	raw, err := r.ReadString(32767)
	if err != nil {
		return err
	}
	var pretty interface{}
	if err := sonic.UnmarshalString(raw, &pretty); err != nil {
		return fmt.Errorf("client: status json: %w", err)
	}
	indented, err := sonic.ConfigStd.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "status:\n%s\n", indented)

	start := time.Now()
	if err := c.send(&protocol.StatusPing{Payload: start.UnixMilli()}); err != nil {
		return err
	}
	id, r, err = c.recv()
	if err != nil {
		return err
	}
	payload, err := r.ReadInt64()
	if err != nil {
		return err
	}
	if id != 0x01 || payload != start.UnixMilli() {
		return fmt.Errorf("client: bad pong id=0x%02X payload=%d", id, payload)
	}
	fmt.Fprintf(out, "ping: %s\n", time.Since(start).Round(time.Microsecond))
	return nil
}

func (c *client) login(out io.Writer, host string, port uint16, name, chat string) error {
	if err := c.handshake(host, port, protocol.NextStateLogin); err != nil {
		return err
	}
	if err := c.send(&protocol.LoginStart{Name: name}); err != nil {
		return err
	}

	for c.state == protocol.StateLogin {
		id, r, err := c.recv()
		if err != nil {
			return err
		}
		switch id {
		case 0x00:
			reason, _ := r.ReadString(32767)
			return fmt.Errorf("%w: %s", errDisconnected, reason)
		case 0x03:
			threshold, err := r.ReadVarInt()
			if err != nil {
				return err
			}
			c.threshold = int(threshold)
			fmt.Fprintf(out, "compression threshold: %d\n", threshold)
		case 0x02:
			uid, err := r.ReadString(36)
			if err != nil {
				return err
			}
			username, err := r.ReadString(protocol.MaxUsernameLen)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "logged in as %s (%s)\n", username, uid)
			c.state = protocol.StatePlay
		default:
			return fmt.Errorf("client: unexpected login packet 0x%02X", id)
		}
	}

	if err := c.send(&protocol.KeepAlive{ID: time.Now().UnixNano()}); err != nil {
		return err
	}
	if chat != "" {
		return c.send(&protocol.ChatMessage{Message: chat})
	}
	return nil
}
