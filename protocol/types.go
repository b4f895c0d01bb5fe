package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrPositionRange = errors.New("protocol: position out of range")
	ErrFieldNotSent  = errors.New("protocol: field is not sent for this variant")
)

// Position is a block coordinate packed into 64 bits on the wire
// (x: 26 bits, y: 12 bits, z: 26 bits, all signed).
type Position struct {
	X, Y, Z int32
}

// Packed coordinate bounds.
const (
	MinPositionXZ = -1 << 25
	MaxPositionXZ = 1<<25 - 1
	MinPositionY  = -1 << 11
	MaxPositionY  = 1<<11 - 1
)

// Valid reports whether p fits the packed layout.
func (p Position) Valid() bool {
	return p.X >= MinPositionXZ && p.X <= MaxPositionXZ &&
		p.Y >= MinPositionY && p.Y <= MaxPositionY &&
		p.Z >= MinPositionXZ && p.Z <= MaxPositionXZ
}

func (p Position) pack() uint64 {
	return (uint64(p.X)&0x3FFFFFF)<<38 | (uint64(p.Y)&0xFFF)<<26 | uint64(p.Z)&0x3FFFFFF
}

func unpackPosition(v uint64) Position {
	s := int64(v)
	return Position{
		X: int32(s >> 38),
		Y: int32(s << 26 >> 52),
		Z: int32(s << 38 >> 38),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// EmptySlotID marks a slot that holds no item.
const EmptySlotID int16 = -1

// Slot is an inventory item stack. NBT holds the raw tag bytes, including the
// root tag type; it is nil when the item carries no tag.
type Slot struct {
	ID     int16
	Count  int8
	Damage int16
	NBT    []byte
}

func (s Slot) Empty() bool {
	return s.ID == EmptySlotID
}

func (r *Reader) ReadSlot() (Slot, error) {
	id, err := r.ReadInt16()
	if err != nil {
		return Slot{}, err
	}
	if id == EmptySlotID {
		return Slot{ID: EmptySlotID}, nil
	}
	s := Slot{ID: id}
	if s.Count, err = r.ReadInt8(); err != nil {
		return Slot{}, err
	}
	if s.Damage, err = r.ReadInt16(); err != nil {
		return Slot{}, err
	}
	if s.NBT, err = r.readRawNBT(); err != nil {
		return Slot{}, fmt.Errorf("slot nbt: %w", err)
	}
	return s, nil
}

// WriteSlot writes s. An empty slot carries no count, damage or tag, and a
// tag must be exactly one root compound as ReadSlot captures it.
func (w *Writer) WriteSlot(s Slot) error {
	if s.Empty() {
		if s.Count != 0 || s.Damage != 0 || s.NBT != nil {
			return fmt.Errorf("empty slot with item data: %w", ErrFieldNotSent)
		}
		w.WriteInt16(s.ID)
		return nil
	}
	if s.NBT != nil {
		if err := checkRawNBT(s.NBT); err != nil {
			return fmt.Errorf("slot nbt: %w", err)
		}
	}
	w.WriteInt16(s.ID)
	w.WriteInt8(s.Count)
	w.WriteInt16(s.Damage)
	if s.NBT == nil {
		w.WriteUint8(nbtEnd)
		return nil
	}
	w.buf = append(w.buf, s.NBT...)
	return nil
}

func checkRawNBT(b []byte) error {
	raw, err := NewReader(bytes.NewReader(b)).readRawNBT()
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: bare end tag, use a nil tag instead", ErrNBTTagType)
	}
	if len(raw) != len(b) {
		return fmt.Errorf("%d bytes after the root tag", len(b)-len(raw))
	}
	return nil
}

const (
	nbtEnd = iota
	nbtByte
	nbtShort
	nbtInt
	nbtLong
	nbtFloat
	nbtDouble
	nbtByteArray
	nbtString
	nbtList
	nbtCompound
	nbtIntArray
	nbtLongArray
)

const maxNBTDepth = 512

var (
	ErrNBTTagType  = errors.New("protocol: unknown nbt tag type")
	ErrNBTTooDeep  = errors.New("protocol: nbt nesting too deep")
	ErrNBTTooLarge = errors.New("protocol: nbt exceeds size limit")
)

// nbtScanner walks one NBT tag structurally and records the bytes it consumed.
// Item tags are kept opaque; only their boundary matters to the dispatcher.
type nbtScanner struct {
	r   *Reader
	out []byte
}

func (r *Reader) readRawNBT() ([]byte, error) {
	typ, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if typ == nbtEnd {
		return nil, nil
	}
	if typ != nbtCompound {
		return nil, fmt.Errorf("%w: root tag %d", ErrNBTTagType, typ)
	}
	sc := &nbtScanner{r: r, out: []byte{typ}}
	if err := sc.name(); err != nil {
		return nil, err
	}
	if err := sc.payload(typ, 0); err != nil {
		return nil, err
	}
	return sc.out, nil
}

func (sc *nbtScanner) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if len(sc.out)+n > MaxByteArrayLen {
		return nil, ErrNBTTooLarge
	}
	b, err := sc.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	sc.out = append(sc.out, b...)
	return b, nil
}

func (sc *nbtScanner) length(width int) (int, error) {
	b, err := sc.take(width)
	if err != nil {
		return 0, err
	}
	if width == 2 {
		return int(uint16(b[0])<<8 | uint16(b[1])), nil
	}
	n := int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	if n < 0 {
		return 0, ErrNegativeLength
	}
	return int(n), nil
}

func (sc *nbtScanner) name() error {
	n, err := sc.length(2)
	if err != nil {
		return err
	}
	_, err = sc.take(n)
	return err
}

func (sc *nbtScanner) payload(typ byte, depth int) error {
	if depth > maxNBTDepth {
		return ErrNBTTooDeep
	}
	switch typ {
	case nbtByte:
		_, err := sc.take(1)
		return err
	case nbtShort:
		_, err := sc.take(2)
		return err
	case nbtInt, nbtFloat:
		_, err := sc.take(4)
		return err
	case nbtLong, nbtDouble:
		_, err := sc.take(8)
		return err
	case nbtByteArray, nbtIntArray, nbtLongArray:
		n, err := sc.length(4)
		if err != nil {
			return err
		}
		width := map[byte]int{nbtByteArray: 1, nbtIntArray: 4, nbtLongArray: 8}[typ]
		if n > MaxByteArrayLen/width {
			return ErrNBTTooLarge
		}
		_, err = sc.take(n * width)
		return err
	case nbtString:
		n, err := sc.length(2)
		if err != nil {
			return err
		}
		_, err = sc.take(n)
		return err
	case nbtList:
		b, err := sc.take(1)
		if err != nil {
			return err
		}
		n, err := sc.length(4)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := sc.payload(b[0], depth+1); err != nil {
				return err
			}
		}
		return nil
	case nbtCompound:
		for {
			b, err := sc.take(1)
			if err != nil {
				return err
			}
			if b[0] == nbtEnd {
				return nil
			}
			if err := sc.name(); err != nil {
				return err
			}
			if err := sc.payload(b[0], depth+1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %d", ErrNBTTagType, typ)
	}
}
