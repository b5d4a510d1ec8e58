package deflate

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/tstromberg/deflopt/bitio"
)

// manufactureUpstream compresses payload with klauspost/compress/flate at
// the given level, standing in for the opaque upstream Zopfli/zlib-9
// encoder: we only ever consume its output, never its internals.
func manufactureUpstream(t *testing.T, payload []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

// decodeTokensToBytes replays a stream's tokens against the sliding window
// model DEFLATE back-references assume, reconstructing the original
// uncompressed payload. Used here purely to confirm parse fidelity; the
// optimizer itself never needs to materialize decompressed output.
func decodeTokensToBytes(toks []Token) []byte {
	var out []byte
	for _, t := range toks {
		switch v := t.(type) {
		case Literal:
			out = append(out, byte(v.Lit))
		case Match:
			start := len(out) - v.Distance
			for i := 0; i < v.Length; i++ {
				out = append(out, out[start+i])
			}
		}
	}
	return out
}

func TestParseUpstreamStreamPreservesPayload(t *testing.T) {
	payload := []byte(`import zlib;exec(zlib.decompress(bytes("payload payload payload","L1")))`)

	for _, level := range []int{flate.BestCompression, flate.DefaultCompression} {
		stream := manufactureUpstream(t, payload, level)

		r := bitio.NewReader(stream)
		var got []byte
		for {
			blk, err := Parse(r)
			if err != nil {
				t.Fatalf("level %d: Parse: %v", level, err)
			}
			switch b := blk.(type) {
			case *StoredBlock:
				got = append(got, b.Data...)
			case *FixedBlock:
				got = append(got, decodeTokensToBytes(b.Tokens)...)
			case *DynamicBlock:
				got = append(got, decodeTokensToBytes(b.Tokens)...)
			}
			if blk.Final() {
				break
			}
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("level %d: decoded payload mismatch:\ngot:  %q\nwant: %q", level, got, payload)
		}
	}
}

func TestParseUpstreamStreamRoundTripsBitExact(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 20)
	stream := manufactureUpstream(t, payload, flate.BestCompression)

	r := bitio.NewReader(stream)
	w := bitio.NewWriter()
	for {
		blk, err := Parse(r)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if err := blk.Dump(w); err != nil {
			t.Fatalf("Dump: %v", err)
		}
		if blk.Final() {
			break
		}
	}

	if !bytes.Equal(w.Bytes(), stream) {
		t.Fatalf("re-dumping an unmodified parse did not reproduce the original stream: got %d bytes, want %d", len(w.Bytes()), len(stream))
	}
}
