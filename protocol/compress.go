package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionDisabled is the threshold value meaning frames carry bare packet
// bodies with no data-length field.
const CompressionDisabled = -1

var (
	ErrBadlyCompressed     = errors.New("protocol: badly compressed packet")
	ErrCompressedSizeMatch = errors.New("protocol: decompressed size does not match data length")
)

// CompressBody converts a packet body to the on-wire frame body for threshold.
// With compression enabled every frame body starts with a VarInt data length:
// zero for bodies shorter than threshold, sent as is, otherwise the
// uncompressed length followed by the zlib stream.
func CompressBody(body []byte, threshold int) ([]byte, error) {
	if threshold < 0 {
		return body, nil
	}
	if len(body) < threshold {
		out := make([]byte, 0, 1+len(body))
		out = append(out, 0)
		return append(out, body...), nil
	}

	var buf bytes.Buffer
	buf.Write(AppendVarInt(nil, int32(len(body))))
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBody is the inverse of CompressBody.
func DecompressBody(body []byte, threshold int) ([]byte, error) {
	if threshold < 0 {
		return body, nil
	}
	dataLen, n := DecodeVarInt(body)
	switch {
	case n == 0:
		return nil, fmt.Errorf("data length: %w", io.ErrUnexpectedEOF)
	case n < 0:
		return nil, fmt.Errorf("data length: %w", ErrVarIntTooBig)
	}
	rest := body[n:]
	if dataLen == 0 {
		return rest, nil
	}
	if int(dataLen) < threshold {
		return nil, fmt.Errorf("%w: data length %d below threshold %d", ErrBadlyCompressed, dataLen, threshold)
	}
	if dataLen < 0 || dataLen > MaxFrameLen {
		return nil, fmt.Errorf("%w: data length %d", ErrFrameTooLarge, dataLen)
	}
	return zlibDecompress(rest, int(dataLen))
}

func zlibDecompress(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadlyCompressed, err)
	}
	defer zr.Close()

	limited := io.LimitReader(zr, int64(size)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadlyCompressed, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCompressedSizeMatch, len(out), size)
	}
	return out, nil
}
