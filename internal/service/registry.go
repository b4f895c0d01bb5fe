package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/google/uuid"

	"github.com/gogogo1024/mcgate"
	"github.com/gogogo1024/mcgate/protocol"
)

// Clientbound packet ids written by the default handlers.
const (
	statusResponseID  int32 = 0x00
	statusPongID      int32 = 0x01
	loginDisconnectID int32 = 0x00
	loginSuccessID    int32 = 0x02
	setCompressionID  int32 = 0x03
)

const (
	maxStatusJSONChars = 32767
	maxChatJSONChars   = 32767
)

var (
	ErrBadNextState       = errors.New("service: handshake asked for an unknown next state")
	ErrOnlineModeDisabled = errors.New("service: encryption requested but the server runs in offline mode")
	ErrVersionMismatch    = errors.New("service: client protocol version not supported")
	ErrServerFull         = errors.New("service: server is full")
)

type Config struct {
	MOTD        string
	MaxPlayers  int
	VersionName string
}

func (c Config) withDefaults() Config {
	if c.MOTD == "" {
		c.MOTD = "A mcgate server"
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 20
	}
	if c.VersionName == "" {
		c.VersionName = "1.12.2"
	}
	return c
}

// Service holds the default connection flow: handshake, status, offline login
// and keep-alive bookkeeping in Play.
type Service struct {
	cfg Config

	mu      sync.Mutex
	players map[*mcgate.Session]string

	keepAlives atomic.Uint64
	chats      atomic.Uint64
}

// RegisterHandlers wires the default handlers into r and returns the service
// so callers can inspect it.
func RegisterHandlers(r *mcgate.Router, cfg Config) *Service {
	s := &Service{
		cfg:     cfg.withDefaults(),
		players: make(map[*mcgate.Session]string),
	}
	r.Register(protocol.KindHandshake, s.handleHandshake)
	r.Register(protocol.KindStatusRequest, s.handleStatusRequest)
	r.Register(protocol.KindStatusPing, s.handleStatusPing)
	r.Register(protocol.KindLoginStart, s.handleLoginStart)
	r.Register(protocol.KindEncryptionResponse, s.handleEncryptionResponse)
	r.Register(protocol.KindKeepAlive, s.handleKeepAlive)
	r.Register(protocol.KindChatMessage, s.handleChat)
	r.OnClose(s.sessionClosed)
	return s
}

// Online returns the names of players currently in Play.
func (s *Service) Online() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.players))
	for _, name := range s.players {
		out = append(out, name)
	}
	return out
}

func (s *Service) KeepAlives() uint64 { return s.keepAlives.Load() }

func (s *Service) ChatMessages() uint64 { return s.chats.Load() }

func (s *Service) handleHandshake(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	hs := p.(*protocol.Handshake)
	sess.SetProtocolVersion(hs.ProtocolVersion)
	switch hs.NextState {
	case protocol.NextStateStatus:
		return sess.SetState(protocol.StateStatus)
	case protocol.NextStateLogin:
		return sess.SetState(protocol.StateLogin)
	}
	return fmt.Errorf("%w: %d", ErrBadNextState, hs.NextState)
}

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusPlayers struct {
	Max    int `json:"max"`
	Online int `json:"online"`
}

type chatText struct {
	Text string `json:"text"`
}

type statusResponse struct {
	Version     statusVersion `json:"version"`
	Players     statusPlayers `json:"players"`
	Description chatText      `json:"description"`
}

func (s *Service) statusJSON() ([]byte, error) {
	s.mu.Lock()
	online := len(s.players)
	s.mu.Unlock()
	return sonic.Marshal(statusResponse{
		Version:     statusVersion{Name: s.cfg.VersionName, Protocol: protocol.ProtocolVersion},
		Players:     statusPlayers{Max: s.cfg.MaxPlayers, Online: online},
		Description: chatText{Text: s.cfg.MOTD},
	})
}

func (s *Service) handleStatusRequest(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	data, err := s.statusJSON()
	if err != nil {
		return err
	}
	w := protocol.NewWriter(len(data) + protocol.MaxVarIntLen)
	if err := w.WriteString(string(data), maxStatusJSONChars); err != nil {
		return err
	}
	return sess.WriteRaw(statusResponseID, w.Bytes())
}

func (s *Service) handleStatusPing(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	w := protocol.NewWriter(8)
	w.WriteInt64(p.(*protocol.StatusPing).Payload)
	return sess.WriteRaw(statusPongID, w.Bytes())
}

func (s *Service) handleLoginStart(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	name := p.(*protocol.LoginStart).Name

	if v := sess.ProtocolVersion(); v != protocol.ProtocolVersion {
		klog.CtxInfof(ctx, "service: %s from %s uses protocol %d", name, sess.RemoteAddr(), v)
		return s.disconnect(sess, fmt.Sprintf("Outdated client! Please use %s", s.cfg.VersionName), ErrVersionMismatch)
	}
	if !s.join(sess, name) {
		return s.disconnect(sess, "The server is full!", ErrServerFull)
	}

	if threshold := sess.ConfiguredCompressionThreshold(); threshold >= 0 {
		w := protocol.NewWriter(protocol.MaxVarIntLen)
		w.WriteVarInt(int32(threshold))
		if err := sess.WriteRaw(setCompressionID, w.Bytes()); err != nil {
			return err
		}
		sess.EnableCompression(threshold)
	}

	id := OfflineUUID(name)
	w := protocol.NewWriter(64)
	if err := w.WriteString(id.String(), 36); err != nil {
		return err
	}
	if err := w.WriteString(name, protocol.MaxUsernameLen); err != nil {
		return err
	}
	if err := sess.WriteRaw(loginSuccessID, w.Bytes()); err != nil {
		return err
	}

	sess.SetUsername(name)
	klog.CtxInfof(ctx, "service: %s (%s) logged in from %s", name, id, sess.RemoteAddr())
	return sess.SetState(protocol.StatePlay)
}

func (s *Service) join(sess *mcgate.Session, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) >= s.cfg.MaxPlayers {
		return false
	}
	s.players[sess] = name
	return true
}

func (s *Service) sessionClosed(sess *mcgate.Session) {
	s.mu.Lock()
	name, ok := s.players[sess]
	delete(s.players, sess)
	s.mu.Unlock()
	if ok {
		klog.Infof("service: %s left", name)
	}
}

// disconnect sends a Login Disconnect with reason and returns cause so the
// connection closes.
func (s *Service) disconnect(sess *mcgate.Session, reason string, cause error) error {
	data, err := sonic.Marshal(chatText{Text: reason})
	if err != nil {
		return err
	}
	w := protocol.NewWriter(len(data) + protocol.MaxVarIntLen)
	if err := w.WriteString(string(data), maxChatJSONChars); err != nil {
		return err
	}
	if err := sess.WriteRaw(loginDisconnectID, w.Bytes()); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Service) handleEncryptionResponse(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	klog.CtxWarnf(ctx, "service: unexpected encryption response from %s", sess.RemoteAddr())
	return ErrOnlineModeDisabled
}

func (s *Service) handleKeepAlive(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	s.keepAlives.Add(1)
	klog.CtxDebugf(ctx, "service: keep-alive %d from %s", p.(*protocol.KeepAlive).ID, sess.Username())
	return nil
}

func (s *Service) handleChat(ctx context.Context, sess *mcgate.Session, p protocol.Packet) error {
	s.chats.Add(1)
	klog.CtxInfof(ctx, "service: <%s> %s", sess.Username(), p.(*protocol.ChatMessage).Message)
	return nil
}

// OfflineUUID derives the UUID an offline-mode server assigns to name: a
// version 3 UUID over the MD5 of "OfflinePlayer:"+name with no namespace.
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}
