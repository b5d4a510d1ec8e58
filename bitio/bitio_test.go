package bitio

import (
	"math/rand/v2"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	type field struct {
		v uint32
		n int
	}

	for range 100 {
		var fields []field
		w := NewWriter()
		for range 1 + rng.IntN(64) {
			n := 1 + rng.IntN(16)
			v := rng.Uint32N(1 << uint(n))
			fields = append(fields, field{v, n})
			w.WriteBits(v, n)
		}

		r := NewReader(w.Bytes())
		for _, f := range fields {
			got, err := r.ReadBits(f.n)
			if err != nil {
				t.Fatalf("ReadBits(%d): %v", f.n, err)
			}
			if got != f.v {
				t.Fatalf("ReadBits(%d) = %d, want %d", f.n, got, f.v)
			}
		}
	}
}

func TestAlignToByte(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.AlignToByte()
	w.WriteBits(0xAB, 8)

	got := w.Bytes()
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0] != 0b101 {
		t.Fatalf("got[0] = %08b, want %08b", got[0], 0b101)
	}
	if got[1] != 0xAB {
		t.Fatalf("got[1] = %02x, want ab", got[1])
	}
}

func TestExtendAligned(t *testing.T) {
	a := NewWriter()
	a.WriteBits(0xFF, 8)

	b := NewWriter()
	b.WriteBits(0b11, 2)
	b.WriteBits(0b010, 3)

	a.Extend(b)

	r := NewReader(a.Bytes())
	v, _ := r.ReadBits(8)
	if v != 0xFF {
		t.Fatalf("first byte = %x, want ff", v)
	}
	v, _ = r.ReadBits(2)
	if v != 0b11 {
		t.Fatalf("bit field = %b, want 11", v)
	}
	v, _ = r.ReadBits(3)
	if v != 0b010 {
		t.Fatalf("bit field = %b, want 010", v)
	}
}

func TestExtendUnaligned(t *testing.T) {
	a := NewWriter()
	a.WriteBits(0b101, 3)

	b := NewWriter()
	b.WriteBits(0b1100, 4)

	a.Extend(b)

	r := NewReader(a.Bytes())
	v, _ := r.ReadBits(3)
	if v != 0b101 {
		t.Fatalf("got %b, want 101", v)
	}
	v, _ = r.ReadBits(4)
	if v != 0b1100 {
		t.Fatalf("got %b, want 1100", v)
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b10110, 5)

	r := NewReader(w.Bytes())
	v1, err := r.PeekBits(5)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := r.PeekBits(5)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 || v1 != 0b10110 {
		t.Fatalf("peek mismatch: %b, %b", v1, v2)
	}
	r.DropBits(5)
	v3, err := r.PeekBits(1)
	if err != nil {
		t.Fatalf("PeekBits past end of input should zero-fill, not error: %v", err)
	}
	if v3 != 0 {
		t.Fatalf("PeekBits past end of input = %d, want 0", v3)
	}
}

func TestPeekZeroFillsAtTail(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b1, 1)
	r := NewReader(w.Bytes())

	v, err := r.PeekBits(8)
	if err != nil {
		t.Fatalf("PeekBits at tail should zero-fill, got error: %v", err)
	}
	if v != 0b1 {
		t.Fatalf("got %b, want 1 (zero-filled high bits)", v)
	}
}

func TestReadBytesAlignsFirst(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.AlignToByte()
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(w.Bytes())
	_, _ = r.ReadBits(3)
	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestReadBytesEOF(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadBytes(3); err != ErrUnexpectedEOF {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDropBitsPastZeroFilledTail(t *testing.T) {
	// A single real bit remains; Peek(8) zero-fills the rest. Dropping all
	// 8 (as a Huffman decode would after a table lookup) must not panic
	// just because only 1 bit was genuinely buffered.
	w := NewWriter()
	w.WriteBits(0b1, 1)
	r := NewReader(w.Bytes())

	if _, err := r.PeekBits(8); err != nil {
		t.Fatalf("PeekBits: %v", err)
	}
	r.DropBits(8)

	v, err := r.PeekBits(4)
	if err != nil {
		t.Fatalf("PeekBits after over-drop: %v", err)
	}
	if v != 0 {
		t.Fatalf("got %d, want 0", v)
	}
}
