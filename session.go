package mcgate

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gogogo1024/mcgate/protocol"
)

// Session is the per-connection state shared by the read loop and handlers.
// The state it holds decides how the next packet id is decoded; handlers move
// it forward with SetState.
type Session struct {
	conn                net.Conn
	writeTimeout        time.Duration
	configuredThreshold int

	mu        sync.Mutex
	state     protocol.State
	threshold int
	username  string
	version   int32

	writeMu sync.Mutex
}

func newSession(conn net.Conn, cfg serveConfig) *Session {
	return &Session{
		conn:                conn,
		writeTimeout:        cfg.writeTimeout,
		configuredThreshold: cfg.compressionThreshold,
		state:               protocol.StateHandshake,
		threshold:           protocol.CompressionDisabled,
	}
}

func (s *Session) State() protocol.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState switches the state used to decode every following packet.
func (s *Session) SetState(state protocol.State) error {
	if !state.Valid() {
		return fmt.Errorf("mcgate: invalid state %s", state)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) SetUsername(name string) {
	s.mu.Lock()
	s.username = name
	s.mu.Unlock()
}

// ProtocolVersion is the version the client announced in its handshake.
func (s *Session) ProtocolVersion() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) SetProtocolVersion(v int32) {
	s.mu.Lock()
	s.version = v
	s.mu.Unlock()
}

// ConfiguredCompressionThreshold is the threshold the server wants to use once
// the client has logged in; protocol.CompressionDisabled means none.
func (s *Session) ConfiguredCompressionThreshold() int {
	return s.configuredThreshold
}

// CompressionThreshold is the threshold currently applied to frames in both
// directions.
func (s *Session) CompressionThreshold() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threshold
}

// EnableCompression applies threshold to every frame after the call. The
// Set Compression packet announcing it must already have been written.
func (s *Session) EnableCompression(threshold int) {
	s.mu.Lock()
	s.threshold = threshold
	s.mu.Unlock()
}

// WriteRaw writes one clientbound packet: id followed by body, framed and
// compressed according to the current threshold.
func (s *Session) WriteRaw(id int32, body []byte) error {
	w := protocol.NewWriter(protocol.MaxVarIntLen + len(body))
	w.WriteVarInt(id)
	_, _ = w.Write(body)

	payload, err := protocol.CompressBody(w.Bytes(), s.CompressionThreshold())
	if err != nil {
		return err
	}
	frame, err := protocol.AppendFrame(nil, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return writeAll(s.conn, frame, s.writeTimeout)
}

func (s *Session) Close() error {
	return s.conn.Close()
}
