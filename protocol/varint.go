package protocol

import "errors"

const (
	// MaxVarIntLen is the longest encoding of a 32-bit VarInt.
	MaxVarIntLen = 5
	// MaxVarLongLen is the longest encoding of a 64-bit VarLong.
	MaxVarLongLen = 10
)

var (
	ErrVarIntTooBig  = errors.New("protocol: varint is too big")
	ErrVarLongTooBig = errors.New("protocol: varlong is too big")
)

// AppendVarInt appends v as a VarInt. Negative values always take five bytes.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// AppendVarLong appends v as a VarLong. Negative values always take ten bytes.
func AppendVarLong(dst []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// VarIntLen returns the number of bytes AppendVarInt writes for v.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		n++
		u >>= 7
	}
	return n
}

// DecodeVarInt decodes a VarInt from the start of buf.
// It returns (value, bytesRead). bytesRead is 0 when buf holds an incomplete
// encoding and -1 when the encoding is longer than MaxVarIntLen or its fifth
// byte sets bits beyond 32.
func DecodeVarInt(buf []byte) (int32, int) {
	var v uint32
	for i, b := range buf {
		if i >= MaxVarIntLen || i == MaxVarIntLen-1 && b&0xF0 != 0 {
			return 0, -1
		}
		v |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return int32(v), i + 1
		}
	}
	if len(buf) >= MaxVarIntLen {
		return 0, -1
	}
	return 0, 0
}
