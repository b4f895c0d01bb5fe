package codec

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cloudwego/kitex/pkg/remote"

	"github.com/gogogo1024/mcgate/protocol"
)

// Message tag keys read and written by PacketCodec.
const (
	TagState     = "mcgate.state"
	TagKind      = "mcgate.kind"
	TagID        = "mcgate.id"
	TagThreshold = "mcgate.compression_threshold"
)

var (
	ErrNoState         = errors.New("codec: message carries no connection state")
	ErrIncompleteFrame = errors.New("codec: incomplete frame")
)

// PacketCodec carries serverbound packets over a kitex transport using the
// same frame layout as the TCP gateway. The connection state a frame is
// decoded in comes from the message tags, so the owner of the transport keeps
// driving state transitions.
type PacketCodec struct{}

func (c *PacketCodec) Name() string { return "mcgate" }

func (c *PacketCodec) Encode(ctx context.Context, msg remote.Message, out remote.ByteBuffer) error {
	var p protocol.Packet
	switch v := msg.Data().(type) {
	case protocol.Packet:
		p = v
	case *protocol.Packet:
		if v != nil {
			p = *v
		}
	}
	if p == nil {
		return fmt.Errorf("codec: unsupported kitex message data type: %T", msg.Data())
	}

	body, err := protocol.Encode(p)
	if err != nil {
		return err
	}
	threshold := protocol.CompressionDisabled
	if tags := msg.Tags(); tags != nil {
		threshold = parseThreshold(tags[TagThreshold])
	}
	if body, err = protocol.CompressBody(body, threshold); err != nil {
		return err
	}
	frame, err := protocol.AppendFrame(nil, body)
	if err != nil {
		return err
	}
	if _, err := out.WriteBinary(frame); err != nil {
		return err
	}
	msg.SetPayloadLen(len(frame))
	return nil
}

func (c *PacketCodec) Decode(ctx context.Context, msg remote.Message, in remote.ByteBuffer) error {
	tags := msg.Tags()
	if tags == nil {
		return ErrNoState
	}
	state, err := parseState(tags[TagState])
	if err != nil {
		return err
	}

	size, err := frameSize(in)
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	if _, err := in.ReadBinary(buf); err != nil {
		return err
	}
	frame, _, err := protocol.DecodeFrame(buf)
	if err != nil {
		return err
	}
	body, err := protocol.DecompressBody(frame, parseThreshold(tags[TagThreshold]))
	if err != nil {
		return err
	}

	p, used, err := protocol.DecodeBytes(state, body)
	if err != nil {
		return err
	}
	if used != len(body) {
		return fmt.Errorf("codec: %s left %d unread bytes", protocol.Name(p), len(body)-used)
	}

	switch d := msg.Data().(type) {
	case *protocol.Packet:
		if d != nil {
			*d = p
		}
	case *interface{}:
		if d != nil {
			*d = p
		}
	}
	msg.SetPayloadLen(len(body))

	tags[TagKind] = protocol.Name(p)
	tags[TagID] = protocol.ID(p)
	return nil
}

// frameSize peeks at the length prefix and returns the size of the first
// frame in in, prefix included. Nothing is consumed, so an incomplete frame
// stays buffered for the next call.
func frameSize(in remote.ByteBuffer) (int, error) {
	readable := in.ReadableLen()
	if readable <= 0 {
		return 0, ErrIncompleteFrame
	}
	head, err := in.Peek(min(readable, protocol.MaxVarIntLen))
	if err != nil {
		return 0, err
	}
	if _, _, err := protocol.DecodeFrame(head); err != nil {
		return 0, err
	}
	length, n := protocol.DecodeVarInt(head)
	if n <= 0 {
		return 0, ErrIncompleteFrame
	}
	if size := n + int(length); size <= readable {
		return size, nil
	}
	return 0, ErrIncompleteFrame
}

func parseState(v any) (protocol.State, error) {
	switch x := v.(type) {
	case protocol.State:
		if x.Valid() {
			return x, nil
		}
		return 0, fmt.Errorf("codec: invalid state %d", x)
	case string:
		return protocol.ParseState(x)
	case nil:
		return 0, ErrNoState
	}
	return 0, fmt.Errorf("codec: unsupported state tag type %T", v)
}

func parseThreshold(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
	}
	return protocol.CompressionDisabled
}
