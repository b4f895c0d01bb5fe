package protocol

import (
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits applied while decoding untrusted input.
const (
	// MaxByteArrayLen bounds VarInt-prefixed and rest-of-packet byte arrays.
	MaxByteArrayLen = 1 << 20
	// MaxStringLen is the largest character bound any protocol string may declare.
	MaxStringLen = 32767
)

var (
	ErrInvalidBool      = errors.New("protocol: invalid boolean value")
	ErrNegativeLength   = errors.New("protocol: negative length prefix")
	ErrStringTooLong    = errors.New("protocol: string exceeds its maximum length")
	ErrInvalidUTF8      = errors.New("protocol: string is not valid utf-8")
	ErrByteArrayTooLong = errors.New("protocol: byte array exceeds its maximum length")
)

// Reader reads protocol primitives from an underlying io.Reader.
// It reads exactly the bytes each primitive needs and never buffers ahead,
// so the source position always sits right after the last field read.
// Running out of input mid-field is reported as io.ErrUnexpectedEOF.
type Reader struct {
	r       io.Reader
	br      io.ByteReader
	scratch [8]byte
	n       int64
}

// NewReader wraps r. If r is already a *Reader it is returned as is.
func NewReader(r io.Reader) *Reader {
	if pr, ok := r.(*Reader); ok {
		return pr
	}
	pr := &Reader{r: r}
	if br, ok := r.(io.ByteReader); ok {
		pr.br = br
	}
	return pr
}

// Count returns the number of bytes consumed so far.
func (r *Reader) Count() int64 {
	return r.n
}

// Read implements io.Reader so a *Reader can be handed to generic code.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	return n, err
}

func (r *Reader) ReadByte() (byte, error) {
	if r.br != nil {
		b, err := r.br.ReadByte()
		if err != nil {
			return 0, unexpected(err)
		}
		r.n++
		return b, nil
	}
	if _, err := r.readFull(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

func (r *Reader) readFull(p []byte) (int, error) {
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err != nil {
		return n, unexpected(err)
	}
	return n, nil
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > MaxByteArrayLen {
		return nil, ErrByteArrayTooLong
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) ReadVarInt() (int32, error) {
	var v uint32
	for i := 0; ; i++ {
		if i >= MaxVarIntLen {
			return 0, ErrVarIntTooBig
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == MaxVarIntLen-1 && b&0xF0 != 0 {
			return 0, ErrVarIntTooBig
		}
		v |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
}

func (r *Reader) ReadVarLong() (int64, error) {
	var v uint64
	for i := 0; ; i++ {
		if i >= MaxVarLongLen {
			return 0, ErrVarLongTooBig
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == MaxVarLongLen-1 && b&0xFE != 0 {
			return 0, ErrVarLongTooBig
		}
		v |= uint64(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return int64(v), nil
		}
	}
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

func (r *Reader) ReadUint16() (uint16, error) {
	if _, err := r.readFull(r.scratch[:2]); err != nil {
		return 0, err
	}
	return uint16(r.scratch[0])<<8 | uint16(r.scratch[1]), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	if _, err := r.readFull(r.scratch[:4]); err != nil {
		return 0, err
	}
	b := r.scratch
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if _, err := r.readFull(r.scratch[:8]); err != nil {
		return 0, err
	}
	b := r.scratch
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7]), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadString reads a VarInt-prefixed UTF-8 string of at most maxChars characters.
// The byte length may not exceed maxChars*4, the widest UTF-8 encoding.
func (r *Reader) ReadString(maxChars int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", ErrNegativeLength
	}
	if int(n) > maxChars*utf8.UTFMax {
		return "", ErrStringTooLong
	}
	buf, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	if utf8.RuneCount(buf) > maxChars {
		return "", ErrStringTooLong
	}
	return string(buf), nil
}

// ReadByteArray reads a VarInt-prefixed byte array of at most max bytes.
func (r *Reader) ReadByteArray(max int) ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if int(n) > max {
		return nil, ErrByteArrayTooLong
	}
	return r.ReadBytes(int(n))
}

// ReadRemaining reads until the end of the source. It is used for trailing
// fields whose length is implied by the enclosing frame.
func (r *Reader) ReadRemaining() ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r.r, MaxByteArrayLen+1))
	r.n += int64(len(buf))
	if err != nil {
		return nil, err
	}
	if len(buf) > MaxByteArrayLen {
		return nil, ErrByteArrayTooLong
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return buf, nil
}

func (r *Reader) ReadPosition() (Position, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return Position{}, err
	}
	return unpackPosition(v), nil
}

func (r *Reader) ReadUUID() (uuid.UUID, error) {
	var id uuid.UUID
	if _, err := r.readFull(id[:]); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
