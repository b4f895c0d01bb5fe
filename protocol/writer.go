package protocol

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Writer accumulates protocol primitives in memory.
// Fixed-width writes cannot fail; bounded fields (strings, byte arrays,
// positions, slots) return errors.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *Writer) WriteVarInt(v int32) {
	w.buf = AppendVarInt(w.buf, v)
}

func (w *Writer) WriteVarLong(v int64) {
	w.buf = AppendVarLong(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 0x01)
		return
	}
	w.buf = append(w.buf, 0x00)
}

func (w *Writer) WriteInt8(v int8) {
	w.buf = append(w.buf, byte(v))
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	u := uint32(v)
	w.buf = append(w.buf, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v),
	)
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteInt32(int32(math.Float32bits(v)))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes s with a VarInt length prefix, rejecting strings longer
// than maxChars characters or that are not valid UTF-8.
func (w *Writer) WriteString(s string, maxChars int) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	if utf8.RuneCountInString(s) > maxChars {
		return ErrStringTooLong
	}
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteByteArray writes b with a VarInt length prefix.
func (w *Writer) WriteByteArray(b []byte, max int) error {
	if len(b) > max {
		return ErrByteArrayTooLong
	}
	w.WriteVarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// WriteRemaining writes b without a prefix; it must be the last field.
func (w *Writer) WriteRemaining(b []byte) error {
	if len(b) > MaxByteArrayLen {
		return ErrByteArrayTooLong
	}
	w.buf = append(w.buf, b...)
	return nil
}

func (w *Writer) WritePosition(p Position) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %s", ErrPositionRange, p)
	}
	w.WriteUint64(p.pack())
	return nil
}

func (w *Writer) WriteUUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}
