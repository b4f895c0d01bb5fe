package protocol

import (
	"bytes"
	"fmt"
	"io"
)

//go:generate go run ../cmd/packetgen -schema serverbound.yaml -out serverbound_gen.go

// Packet is a decoded serverbound packet. The set of implementations is closed:
// every packet type is declared in this package and listed in serverbound.yaml.
type Packet interface {
	// Kind identifies the packet type, and through it the owning state and id.
	Kind() Kind

	// Decode reads the packet fields that follow the id. It must consume
	// exactly its own fields.
	Decode(r *Reader) error

	// Encode writes the packet fields that follow the id.
	Encode(w *Writer) error

	isServerbound()
}

// Kind enumerates the serverbound packet types. Its constants are generated.
type Kind uint8

type kindInfo struct {
	name  string
	state State
	id    int32
	new   func() Packet
}

func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) Name() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k].name
}

func (k Kind) String() string {
	return k.Name()
}

// State returns the connection state in which the packet is valid. An
// invalid kind has no state; the result then reports Valid() == false.
func (k Kind) State() State {
	if !k.Valid() {
		return stateCount
	}
	return kinds[k].state
}

// ID returns the packet id within its state, or -1 for an invalid kind.
func (k Kind) ID() int32 {
	if !k.Valid() {
		return -1
	}
	return kinds[k].id
}

// New returns a zero packet of this kind, or nil for an invalid kind.
func (k Kind) New() Packet {
	if !k.Valid() {
		return nil
	}
	return kinds[k].new()
}

// AllKinds returns every packet kind in table order.
func AllKinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Kinds returns the kinds registered for state, indexed by packet id.
func Kinds(state State) []Kind {
	if !state.Valid() {
		return nil
	}
	return append([]Kind(nil), byState[state]...)
}

// Lookup resolves a packet id within state.
func Lookup(state State, id int32) (Kind, bool) {
	if !state.Valid() {
		return 0, false
	}
	table := byState[state]
	if id < 0 || int(id) >= len(table) {
		return 0, false
	}
	return table[id], true
}

// Decode reads one packet id from r and decodes the packet it names in state.
// r must be positioned at the start of a packet body with the frame length
// already removed. On success r has advanced past exactly the id and the
// packet fields.
func Decode(state State, r io.Reader) (Packet, error) {
	pr := NewReader(r)
	id, err := pr.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedID, err)
	}
	k, ok := Lookup(state, id)
	if !ok {
		return nil, &UnknownPacketError{State: state, ID: id}
	}
	p := k.New()
	if err := p.Decode(pr); err != nil {
		return nil, &PayloadError{Kind: k, State: state, Err: err}
	}
	return p, nil
}

// DecodeBytes is Decode over an in-memory body. It also returns the number of
// bytes the packet consumed so callers can detect trailing data.
func DecodeBytes(state State, body []byte) (Packet, int, error) {
	br := bytes.NewReader(body)
	p, err := Decode(state, br)
	if err != nil {
		return nil, 0, err
	}
	return p, len(body) - br.Len(), nil
}

// Encode writes the packet id followed by the packet fields.
func Encode(p Packet) ([]byte, error) {
	w := NewWriter(64)
	if err := EncodeTo(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo appends the encoded packet to w. On error w may hold a partial packet.
func EncodeTo(w *Writer, p Packet) error {
	if p == nil {
		return &EncodeError{Err: ErrNilPacket}
	}
	k := p.Kind()
	if !k.Valid() {
		return &EncodeError{Kind: k, Err: fmt.Errorf("unregistered kind %d", uint8(k))}
	}
	w.WriteVarInt(k.ID())
	if err := p.Encode(w); err != nil {
		return &EncodeError{Kind: k, Err: err}
	}
	return nil
}

// Name returns the packet type name, e.g. "EncryptionResponse".
func Name(p Packet) string {
	return p.Kind().Name()
}

// ID returns the id the packet is sent under in its state.
func ID(p Packet) int32 {
	return p.Kind().ID()
}

// StateOf returns the state that owns the packet.
func StateOf(p Packet) State {
	return p.Kind().State()
}
