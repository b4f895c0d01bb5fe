package protocol

import (
	"errors"
	"fmt"
	"io"
)

// MaxFrameLen is the largest frame body accepted in either direction: the
// largest value a three byte VarInt length prefix can hold.
const MaxFrameLen = 1<<21 - 1

var (
	ErrFrameTooLarge = errors.New("protocol: frame too large")
	ErrEmptyFrame    = errors.New("protocol: empty frame")
)

// DecodeFrame parses one length-prefixed frame from the front of buf.
// It returns the frame body (aliasing buf) and the number of bytes the frame
// occupies. When buf does not yet hold a whole frame it returns (nil, 0, nil)
// so the caller can read more and retry.
func DecodeFrame(buf []byte) ([]byte, int, error) {
	length, n := DecodeVarInt(buf)
	if n == 0 {
		return nil, 0, nil
	}
	if n < 0 {
		return nil, 0, fmt.Errorf("frame length: %w", ErrVarIntTooBig)
	}
	if err := checkFrameLen(int(length)); err != nil {
		return nil, 0, err
	}

	total := n + int(length)
	if len(buf) < total {
		return nil, 0, nil
	}
	return buf[n:total], total, nil
}

// AppendFrame appends body to dst with its VarInt length prefix.
func AppendFrame(dst, body []byte) ([]byte, error) {
	if err := checkFrameLen(len(body)); err != nil {
		return dst, err
	}
	dst = AppendVarInt(dst, int32(len(body)))
	return append(dst, body...), nil
}

// WriteFrame writes body to w as a single frame.
func WriteFrame(w io.Writer, body []byte) error {
	buf, err := AppendFrame(make([]byte, 0, MaxVarIntLen+len(body)), body)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame reads one frame from r and returns its body.
// A clean end of input before the first length byte is reported as io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	pr := NewReader(r)
	start := pr.Count()
	length, err := pr.ReadVarInt()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) && pr.Count() == start {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame length: %w", err)
	}
	if err := checkFrameLen(int(length)); err != nil {
		return nil, err
	}
	body := make([]byte, length)
	if _, err := pr.readFull(body); err != nil {
		return nil, err
	}
	return body, nil
}

func checkFrameLen(n int) error {
	switch {
	case n <= 0:
		return ErrEmptyFrame
	case n > MaxFrameLen:
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	return nil
}
