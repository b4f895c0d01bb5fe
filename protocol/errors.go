package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedID means the packet id itself could not be read: the body was
	// truncated inside the VarInt or the VarInt was longer than five bytes.
	ErrMalformedID = errors.New("protocol: malformed packet id")

	ErrNilPacket = errors.New("protocol: nil packet")
)

// UnknownPacketError reports a well-formed id that has no packet in State.
type UnknownPacketError struct {
	State State
	ID    int32
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("protocol: no serverbound packet with id 0x%02X in state %s", e.ID, e.State)
}

// PayloadError reports a packet whose id matched but whose fields did not decode.
type PayloadError struct {
	Kind  Kind
	State State
	Err   error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("protocol: decode %s (state %s, id 0x%02X): %v", e.Kind.Name(), e.State, e.Kind.ID(), e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// EncodeError reports a packet that could not be serialized.
type EncodeError struct {
	Kind Kind
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Kind.Valid() && !errors.Is(e.Err, ErrNilPacket) {
		return fmt.Sprintf("protocol: encode %s: %v", e.Kind.Name(), e.Err)
	}
	return fmt.Sprintf("protocol: encode: %v", e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
