// Package huffman builds canonical Huffman codes from a length vector and
// supports both encoding and flat-table decoding, per RFC1951 §3.2.2.
package huffman

import (
	"errors"
	"fmt"

	"github.com/tstromberg/deflopt/bitio"
)

// Construction errors. The optimizer treats these as "skip this candidate",
// not fatal, when they arise from a perturbed length vector; outside the
// optimizer they are fatal.
var (
	ErrHuffmanEmpty   = errors.New("huffman: length vector has no nonzero entries")
	ErrKraftOverflow  = errors.New("huffman: lengths are over-subscribed (Kraft sum exceeds one)")
	ErrIncompleteTree = errors.New("huffman: lengths do not form a complete tree (Kraft sum is less than one)")

	// ErrInvalidPrefix is a parse-time error: the decode table has no
	// code for the bits actually present in the stream.
	ErrInvalidPrefix = errors.New("huffman: invalid prefix code in input")
)

type decEntry struct {
	sym int32
	n   uint8
}

// Code is a canonical Huffman code built from a length vector: L[0..A],
// where L[s]==0 means symbol s is unused.
type Code struct {
	lengths []int
	maxBits int

	// codes[s] holds the LSB-reversed canonical code for symbol s, valid
	// only when lengths[s] != 0.
	codes []uint32

	// table is the flat decode table, 2^maxBits entries, indexed by the
	// next maxBits bits read LSB-first.
	table []decEntry
}

// reverseBits reverses the low n bits of x.
func reverseBits(x uint32, n int) uint32 {
	var r uint32
	for range n {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// bitCounts tallies, for each length in [1, maxBits], how many symbols use
// it.
func bitCounts(lengths []int, maxBits int) []int {
	counts := make([]int, maxBits+1)
	for _, l := range lengths {
		if l > 0 && l <= maxBits {
			counts[l]++
		}
	}
	return counts
}

// kraftLeftover computes the RFC1951 completeness residual: starting from a
// single unassigned root, each length level consumes 2x as many leaves as
// codes of that length. A complete tree leaves exactly zero; oversubscribed
// leaves negative; incomplete leaves positive.
func kraftLeftover(lengths []int, maxBits int) int {
	counts := bitCounts(lengths, maxBits)
	left := 1
	for b := 1; b <= maxBits; b++ {
		left <<= 1
		left -= counts[b]
	}
	return left
}

// IsValid reports whether lengths forms a complete Huffman tree: neither
// over- nor under-subscribed, per the Kraft equality. It requires at least
// one nonzero length.
func IsValid(lengths []int, maxBits int) bool {
	hasNonzero := false
	for _, l := range lengths {
		if l > 0 {
			hasNonzero = true
			break
		}
	}
	if !hasNonzero {
		return false
	}
	return kraftLeftover(lengths, maxBits) == 0
}

// Validate returns the specific construction error for an invalid length
// vector, or nil if it is a valid complete tree.
func Validate(lengths []int, maxBits int) error {
	hasNonzero := false
	for _, l := range lengths {
		if l > 0 {
			hasNonzero = true
			break
		}
	}
	if !hasNonzero {
		return ErrHuffmanEmpty
	}
	switch left := kraftLeftover(lengths, maxBits); {
	case left < 0:
		return ErrKraftOverflow
	case left > 0:
		return ErrIncompleteTree
	default:
		return nil
	}
}

// New builds a canonical Huffman code from a length vector. lengths[s] is
// the code length of symbol s in bits, or 0 if s is unused. It requires a
// complete tree (Validate(lengths, max(lengths)) == nil).
func New(lengths []int) (*Code, error) {
	maxBits := 0
	for _, l := range lengths {
		if l > maxBits {
			maxBits = l
		}
	}
	if maxBits == 0 {
		return nil, ErrHuffmanEmpty
	}
	if err := Validate(lengths, maxBits); err != nil {
		return nil, err
	}

	counts := bitCounts(lengths, maxBits)
	nextCode := make([]int, maxBits+1)
	code := 0
	for b := 1; b <= maxBits; b++ {
		code = (code + counts[b-1]) << 1
		nextCode[b] = code
	}

	codes := make([]uint32, len(lengths))
	table := make([]decEntry, 1<<uint(maxBits))

	// Canonical order: ascending length, then ascending symbol. Since we
	// assign codes by scanning symbols in order and bumping nextCode[l]
	// per length class, this naturally produces canonical assignment as
	// long as we visit symbols length-class by length-class; visiting in
	// plain symbol order together with per-length next_code counters
	// gives the same assignment RFC1951 describes.
	for l := 1; l <= maxBits; l++ {
		for s, sl := range lengths {
			if sl != l {
				continue
			}
			c := nextCode[l]
			nextCode[l]++
			codes[s] = reverseBits(uint32(c), l)

			reps := 1 << uint(maxBits-l)
			base := codes[s]
			for k := 0; k < reps; k++ {
				idx := (uint32(k) << uint(l)) | base
				table[idx] = decEntry{sym: int32(s), n: uint8(l)}
			}
		}
	}

	return &Code{
		lengths: lengths,
		maxBits: maxBits,
		codes:   codes,
		table:   table,
	}, nil
}

// Lengths returns the length vector the code was built from. Callers must
// not mutate the result.
func (c *Code) Lengths() []int { return c.lengths }

// MaxBits returns max(lengths).
func (c *Code) MaxBits() int { return c.maxBits }

// Encode writes sym's canonical code to w.
func (c *Code) Encode(w *bitio.Writer, sym int) error {
	if sym < 0 || sym >= len(c.lengths) || c.lengths[sym] == 0 {
		return fmt.Errorf("huffman: symbol %d has no assigned code", sym)
	}
	w.WriteBits(c.codes[sym], c.lengths[sym])
	return nil
}

// Decode reads one symbol from r using this code's flat decode table.
func (c *Code) Decode(r *bitio.Reader) (int, error) {
	bits, err := r.PeekBits(c.maxBits)
	if err != nil {
		return 0, err
	}
	e := c.table[bits]
	if e.n == 0 {
		return 0, ErrInvalidPrefix
	}
	r.DropBits(int(e.n))
	return int(e.sym), nil
}
