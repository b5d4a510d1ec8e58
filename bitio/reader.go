package bitio

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when ensuring bits runs out of input and
// zero-fill was not requested.
var ErrUnexpectedEOF = errors.New("bitio: unexpected end of input")

// Reader pulls bits LSB-first out of a byte slice, mirroring Writer. The
// zero value is not usable; construct with NewReader.
type Reader struct {
	src    []byte
	cursor int    // index into src of the next unread byte
	acc    uint64 // lookahead accumulator, low bits are next to read
	nbits  uint   // number of valid bits in acc
}

// NewReader wraps src for bit-level reading starting at its first byte.
func NewReader(src []byte) *Reader {
	return &Reader{src: src}
}

// ensureBits pulls bytes from src until the accumulator holds at least n
// bits, or src is exhausted. On exhaustion it returns ErrUnexpectedEOF
// unless allowZeroFill is true, in which case the missing bits are treated
// as zero (used by Peek at the very tail of a stream, so a final Huffman
// lookup can still address a full decode table).
func (r *Reader) ensureBits(n uint, allowZeroFill bool) error {
	for r.nbits < n {
		if r.cursor >= len(r.src) {
			if allowZeroFill {
				return nil
			}
			return ErrUnexpectedEOF
		}
		r.acc |= uint64(r.src[r.cursor]) << r.nbits
		r.nbits += 8
		r.cursor++
	}
	return nil
}

// PeekBits returns the next n bits without advancing the cursor. If fewer
// than n bits remain in the source, the missing high bits read as zero —
// required so the final Huffman lookup at the tail of a stream can still
// address a full decode table.
func (r *Reader) PeekBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("bitio: PeekBits: invalid bit count %d", n)
	}
	if n == 0 {
		return 0, nil
	}
	if err := r.ensureBits(uint(n), true); err != nil {
		return 0, err
	}
	mask := uint64(1)<<uint(n) - 1
	return uint32(r.acc & mask), nil
}

// DropBits discards n bits that a prior Peek established were available,
// real or zero-filled; it does not perform I/O. Dropping past the true end
// of input (possible right after a zero-filled Peek at the tail of a
// stream) is not an error: those bits were already known to be zero.
func (r *Reader) DropBits(n int) {
	if n < 0 {
		panic(fmt.Sprintf("bitio: DropBits: negative bit count %d", n))
	}
	if uint(n) >= r.nbits {
		r.acc = 0
		r.nbits = 0
		return
	}
	r.acc >>= uint(n)
	r.nbits -= uint(n)
}

// ReadBits reads and consumes n bits LSB-first, failing with
// ErrUnexpectedEOF if the source is exhausted first.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("bitio: ReadBits: invalid bit count %d", n)
	}
	if n == 0 {
		return 0, nil
	}
	if err := r.ensureBits(uint(n), false); err != nil {
		return 0, err
	}
	mask := uint64(1)<<uint(n) - 1
	v := uint32(r.acc & mask)
	r.acc >>= uint(n)
	r.nbits -= uint(n)
	return v, nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint32, error) {
	return r.ReadBits(1)
}

// AlignToNextByte discards whatever partial-byte residue remains in the
// lookahead buffer, so the next read starts at a byte boundary of the
// underlying source.
func (r *Reader) AlignToNextByte() {
	drop := r.nbits % 8
	r.acc >>= drop
	r.nbits -= drop
}

// ReadBytes aligns to the next byte boundary, then returns the following n
// bytes verbatim, draining the lookahead buffer before the underlying
// source. It fails with ErrUnexpectedEOF if fewer than n bytes remain.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	r.AlignToNextByte()
	out := make([]byte, 0, n)
	for r.nbits > 0 && len(out) < n {
		out = append(out, byte(r.acc))
		r.acc >>= 8
		r.nbits -= 8
	}
	remaining := n - len(out)
	if remaining == 0 {
		return out, nil
	}
	if r.cursor+remaining > len(r.src) {
		return nil, ErrUnexpectedEOF
	}
	out = append(out, r.src[r.cursor:r.cursor+remaining]...)
	r.cursor += remaining
	return out, nil
}

// BitPosition reports the number of bits consumed so far, counting from the
// start of src. Useful for CorruptInputError-style diagnostics.
func (r *Reader) BitPosition() int64 {
	return int64(r.cursor)*8 - int64(r.nbits)
}
